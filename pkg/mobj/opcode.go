package mobj

import (
	"fmt"
	"strings"

	"github.com/ssargent/bdmeta/pkg/codec"
)

// Command groups.
const (
	GroupBranch  = 0
	GroupCompare = 1
	GroupSet     = 2
)

// Branch and set sub-groups.
const (
	SubGroupGoTo = 0
	SubGroupJump = 1
	SubGroupPlay = 2

	SubGroupSet       = 0
	SubGroupSetSystem = 1
)

type opcodeKey struct {
	group, subGroup, option uint8
}

var opcodes = map[opcodeKey]string{
	{GroupBranch, SubGroupGoTo, 0}: "Nop",
	{GroupBranch, SubGroupGoTo, 1}: "GoTo",
	{GroupBranch, SubGroupGoTo, 2}: "Break",

	{GroupBranch, SubGroupJump, 0}: "JumpObject",
	{GroupBranch, SubGroupJump, 1}: "JumpTitle",
	{GroupBranch, SubGroupJump, 2}: "CallObject",
	{GroupBranch, SubGroupJump, 3}: "CallTitle",
	{GroupBranch, SubGroupJump, 4}: "Resume",

	{GroupBranch, SubGroupPlay, 0}: "PlayPL",
	{GroupBranch, SubGroupPlay, 1}: "PlayPLatPI",
	{GroupBranch, SubGroupPlay, 2}: "PlayPLatMK",
	{GroupBranch, SubGroupPlay, 3}: "TerminatePL",
	{GroupBranch, SubGroupPlay, 4}: "LinkPI",
	{GroupBranch, SubGroupPlay, 5}: "LinkMK",

	// The compare group has no sub-groups; entries are keyed on sub-group 0.
	{GroupCompare, 0, 1}: "BC",
	{GroupCompare, 0, 2}: "EQ",
	{GroupCompare, 0, 3}: "NE",
	{GroupCompare, 0, 4}: "GE",
	{GroupCompare, 0, 5}: "GT",
	{GroupCompare, 0, 6}: "LE",
	{GroupCompare, 0, 7}: "LT",

	{GroupSet, SubGroupSet, 1}:  "Move",
	{GroupSet, SubGroupSet, 2}:  "Swap",
	{GroupSet, SubGroupSet, 3}:  "Add",
	{GroupSet, SubGroupSet, 4}:  "Sub",
	{GroupSet, SubGroupSet, 5}:  "Mul",
	{GroupSet, SubGroupSet, 6}:  "Div",
	{GroupSet, SubGroupSet, 7}:  "Mod",
	{GroupSet, SubGroupSet, 8}:  "Rnd",
	{GroupSet, SubGroupSet, 9}:  "And",
	{GroupSet, SubGroupSet, 10}: "Or",
	{GroupSet, SubGroupSet, 11}: "Xor",
	{GroupSet, SubGroupSet, 12}: "BitSet",
	{GroupSet, SubGroupSet, 13}: "BitClr",
	{GroupSet, SubGroupSet, 14}: "ShiftLeft",
	{GroupSet, SubGroupSet, 15}: "ShiftRight",

	{GroupSet, SubGroupSetSystem, 1}: "SetStream",
	{GroupSet, SubGroupSetSystem, 2}: "SetNVTimer",
	{GroupSet, SubGroupSetSystem, 3}: "SetButtonPage",
	{GroupSet, SubGroupSetSystem, 4}: "EnableButton",
	{GroupSet, SubGroupSetSystem, 5}: "DisableButton",
	{GroupSet, SubGroupSetSystem, 6}: "SetSecondaryStream",
	{GroupSet, SubGroupSetSystem, 7}: "PopUpMenuOff",
	{GroupSet, SubGroupSetSystem, 8}: "StillOn",
	{GroupSet, SubGroupSetSystem, 9}: "StillOff",
}

// ResolveOpcode names the instruction selected by a command group,
// sub-group and option. The sub-group is ignored for compare commands.
func ResolveOpcode(group, subGroup, option uint8) (string, error) {
	if group == GroupCompare {
		subGroup = 0
	}
	name, ok := opcodes[opcodeKey{group, subGroup, option}]
	if !ok {
		return "", codec.UnknownOpcodeErrorf("NavigationCommand", "group %d sub-group %d option %d", group, subGroup, option)
	}
	return name, nil
}

// Opcode resolves the command using the option field that belongs to its
// group.
func (c *NavigationCommand) Opcode() (string, error) {
	var option uint8
	switch c.CommandGroup {
	case GroupBranch:
		option = c.BranchOption
	case GroupCompare:
		option = c.CompareOption
	case GroupSet:
		option = c.SetOption
	}
	return ResolveOpcode(c.CommandGroup, c.CommandSubGroup, option)
}

// Disassemble renders the command as "Opcode dst, src", printing only as
// many operands as the command declares. Immediate operands are printed as
// numbers, registers as r<n> for general purpose and PSR<n> for player
// status registers.
func Disassemble(c *NavigationCommand) (string, error) {
	name, err := c.Opcode()
	if err != nil {
		return "", err
	}
	var ops []string
	if c.OperandCount >= 1 {
		ops = append(ops, operand(c.Destination, c.DestinationImmediateValueFlag == 1))
	}
	if c.OperandCount >= 2 {
		ops = append(ops, operand(c.Source, c.SourceImmediateValueFlag == 1))
	}
	if len(ops) == 0 {
		return name, nil
	}
	return name + " " + strings.Join(ops, ", "), nil
}

func operand(v uint32, immediate bool) string {
	switch {
	case immediate:
		return fmt.Sprintf("%d", v)
	case v&0x80000000 != 0:
		return fmt.Sprintf("PSR%d", v&0x7f)
	default:
		return fmt.Sprintf("r%d", v&0xfff)
	}
}
