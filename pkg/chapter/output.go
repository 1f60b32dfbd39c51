package chapter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

const xmlDoctype = `<!DOCTYPE Chapters SYSTEM "matroskachapters.dtd">`

type xmlChapters struct {
	XMLName xml.Name   `xml:"Chapters"`
	Edition xmlEdition `xml:"EditionEntry"`
}

type xmlEdition struct {
	FlagHidden  int       `xml:"EditionFlagHidden"`
	FlagDefault int       `xml:"EditionFlagDefault"`
	Atoms       []xmlAtom `xml:"ChapterAtom"`
}

type xmlAtom struct {
	TimeStart   string     `xml:"ChapterTimeStart"`
	FlagHidden  int        `xml:"ChapterFlagHidden"`
	FlagEnabled int        `xml:"ChapterFlagEnabled"`
	Display     xmlDisplay `xml:"ChapterDisplay"`
}

type xmlDisplay struct {
	String   string `xml:"ChapterString"`
	Language string `xml:"ChapterLanguage"`
}

// WriteXML writes the list as a Matroska chapter file with a single default
// edition. Unnamed entries are called "Chapter NN".
func (c *Chapters) WriteXML(w io.Writer) error {
	doc := xmlChapters{Edition: xmlEdition{FlagDefault: 1}}
	for i, e := range c.Entries {
		name := e.Name
		if name == "" {
			name = fmt.Sprintf("Chapter %02d", i+1)
		}
		doc.Edition.Atoms = append(doc.Edition.Atoms, xmlAtom{
			TimeStart:   Timestamp(e.Time),
			FlagEnabled: 1,
			Display:     xmlDisplay{String: name, Language: e.Language},
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString(xmlDoctype + "\n")
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	buf.WriteString("\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteQPFile writes one "<frame> I" line per chapter, forcing a keyframe at
// every chapter start.
func (c *Chapters) WriteQPFile(w io.Writer) error {
	var buf bytes.Buffer
	for _, e := range c.Entries {
		frame, err := c.Frame(e)
		if err != nil {
			return err
		}
		fmt.Fprintf(&buf, "%d I\n", frame)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
