package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/bdmeta/pkg/codec"
	"github.com/ssargent/bdmeta/pkg/coding"
	"github.com/ssargent/bdmeta/pkg/config"
	"github.com/ssargent/bdmeta/pkg/di"
	"github.com/ssargent/bdmeta/pkg/extension"
	"github.com/ssargent/bdmeta/pkg/mobj"
	"github.com/ssargent/bdmeta/pkg/mpls"
)

type env struct {
	dir        string
	configPath string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Backup.Dir = filepath.Join(dir, "backups")
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, configPath))
	return &env{dir: dir, configPath: configPath}
}

func (e *env) path(name string) string { return filepath.Join(e.dir, name) }

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the CLI with a fresh container and returns everything it
// printed, log lines included.
func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := di.NewContainer()
	SetContainer(c)
	defer func() {
		require.NoError(t, c.Close())
		resetFlags(rootCmd)
	}()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func testPlaylist(ext bool) *mpls.Header {
	item := &mpls.PlayItem{
		ClipInformationFileName: "00001",
		ClipCodecIdentifier:     "M2TS",
		ConnectionCondition:     1,
		INTime:                  900000,
		OUTTime:                 900000 + 45000*10,
		UOMaskTable:             mpls.UOChapterSearch | mpls.UOTimeSearch,
	}
	item.STNTable.Streams[mpls.PrimaryVideo] = []*mpls.StreamPair{{
		Entry:      mpls.StreamEntry{StreamType: mpls.StreamTypePlayItem, RefToStreamPID: 0x1011},
		Attributes: mpls.StreamAttributes{CodingType: coding.H264, Attrs: &mpls.VideoAttributes{VideoFormat: 6, FrameRate: 1}},
	}}
	item.STNTable.Streams[mpls.PrimaryPG] = []*mpls.StreamPair{{
		Entry:      mpls.StreamEntry{StreamType: mpls.StreamTypePlayItem, RefToStreamPID: 0x1200},
		Attributes: mpls.StreamAttributes{CodingType: coding.PresentationGraphics, Attrs: &mpls.GraphicsAttributes{LanguageCode: "eng"}},
	}}

	h := &mpls.Header{
		TypeIndicator:   mpls.TypeIndicator,
		VersionNumber:   "0200",
		AppInfoPlayList: mpls.AppInfoPlayList{PlaybackType: mpls.PlaybackSequential, UOMaskTable: mpls.UOChapterSearch},
	}
	h.PlayList.PlayItems = []*mpls.PlayItem{item}
	h.PlayListMark.Marks = []*mpls.Mark{
		{MarkType: mpls.MarkTypeEntry, MarkTimeStamp: 990000, EntryESPID: 0xFFFF},
	}
	if ext {
		h.ExtensionData = &extension.Data{}
	}
	codec.Recompute(h)
	return h
}

func writePlaylist(t *testing.T, path string, ext bool) []byte {
	t.Helper()
	data, err := codec.Encode(testPlaylist(ext))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return data
}

func TestIdentity(t *testing.T) {
	e := newEnv(t)
	src := e.path("00800.mpls")
	data := writePlaylist(t, src, true)

	out, err := e.run(t, "identity", src, e.path("out/00800.mpls"))
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote MPLS file")

	got, err := os.ReadFile(e.path("out/00800.mpls"))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestOverwriteAndRestore(t *testing.T) {
	e := newEnv(t)
	src := e.path("00800.mpls")
	dst := e.path("00801.mpls")
	original := writePlaylist(t, src, false)
	require.NoError(t, os.WriteFile(dst, original, 0644))

	_, err := e.run(t, "clear-uomask", src, dst)
	assert.True(t, errors.Is(err, codec.ErrDestinationExists))

	out, err := e.run(t, "clear-uomask", src, dst, "--overwrite")
	require.NoError(t, err)
	h, err := mpls.Load(dst)
	require.NoError(t, err)
	assert.Zero(t, h.AppInfoPlayList.UOMaskTable)
	assert.Zero(t, h.PlayList.PlayItems[0].UOMaskTable)

	m := regexp.MustCompile(`"backup"="([0-9A-Za-z]{27})"`).FindStringSubmatch(out)
	require.Len(t, m, 2, out)

	restored := e.path("restored.mpls")
	_, err = e.run(t, "restore", m[1], "--to", restored)
	require.NoError(t, err)
	got, err := os.ReadFile(restored)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestSkipFirstPlayback(t *testing.T) {
	e := newEnv(t)
	src := e.path("00800.mpls")
	writePlaylist(t, src, false)

	_, err := e.run(t, "skip-firstplayback", src, e.path("out.mpls"))
	require.NoError(t, err)

	h, err := mpls.Load(e.path("out.mpls"))
	require.NoError(t, err)
	assert.False(t, h.PlayList.PlayItems[0].UOMaskTable.Has(mpls.UOChapterSearch))
	assert.False(t, h.PlayList.PlayItems[0].UOMaskTable.Has(mpls.UOTimeSearch))
}

func TestAddPGStream(t *testing.T) {
	e := newEnv(t)
	src := e.path("00800.mpls")
	writePlaylist(t, src, false)

	out, err := e.run(t, "add-pgstream", src, e.path("out.mpls"), "00001", "-l", "jpn")
	require.NoError(t, err)
	assert.Contains(t, out, "PID 0x1201")

	h, err := mpls.Load(e.path("out.mpls"))
	require.NoError(t, err)
	pg := h.PlayList.PlayItems[0].STNTable.Streams[mpls.PrimaryPG]
	require.Len(t, pg, 2)
	assert.Equal(t, uint16(0x1201), pg[1].Entry.RefToStreamPID)
	assert.Equal(t, &mpls.GraphicsAttributes{LanguageCode: "jpn"}, pg[1].Attributes.Attrs)

	_, err = e.run(t, "add-pgstream", src, e.path("missing.mpls"), "00009")
	assert.True(t, errors.Is(err, mpls.ErrClipNotFound))
}

func TestFixExtAddress(t *testing.T) {
	e := newEnv(t)
	src := e.path("00800.mpls")
	data := writePlaylist(t, src, true)

	out, err := e.run(t, "fix-ext-address", src, e.path("fixed.mpls"))
	require.NoError(t, err)
	assert.Contains(t, out, "does not seem to contain errors")

	broken := append([]byte(nil), data...)
	broken[19] += 4
	require.NoError(t, os.WriteFile(src, broken, 0644))

	out, err = e.run(t, "fix-ext-address", src, e.path("fixed.mpls"))
	require.NoError(t, err)
	assert.Contains(t, out, "has been fixed")
	got, err := os.ReadFile(e.path("fixed.mpls"))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCheckPD(t *testing.T) {
	e := newEnv(t)
	src := e.path("00800.mpls")
	writePlaylist(t, src, false)

	out, err := e.run(t, "check-pd", src)
	require.NoError(t, err)
	assert.Contains(t, out, "No plug-in disc issues")
}

func TestChapters(t *testing.T) {
	e := newEnv(t)
	src := e.path("00800.mpls")
	writePlaylist(t, src, false)

	_, err := e.run(t, "chapters", src, e.path("chapters"), "--qpfile")
	require.NoError(t, err)

	xmlOut, err := os.ReadFile(e.path("chapters/00800_00001.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(xmlOut), "<ChapterTimeStart>00:00:02.000000</ChapterTimeStart>")
	assert.Contains(t, string(xmlOut), "<ChapterLanguage>eng</ChapterLanguage>")

	qp, err := os.ReadFile(e.path("chapters/00800_00001.qpf"))
	require.NoError(t, err)
	assert.Equal(t, "0 I\n48 I\n", string(qp))

	_, err = e.run(t, "chapters", src, e.path("chapters"), "--single", "--qpfile")
	assert.Error(t, err)
}

func TestDisasm(t *testing.T) {
	e := newEnv(t)
	h := &mobj.Header{TypeIndicator: mobj.TypeIndicator, VersionNumber: "0200"}
	h.MovieObjects.Mobjs = []*mobj.Mobj{{
		NavigationCommands: []*mobj.NavigationCommand{{
			OperandCount:             2,
			CommandGroup:             mobj.GroupSet,
			SourceImmediateValueFlag: 1,
			SetOption:                1,
			Destination:              1,
			Source:                   5,
		}},
	}}
	path := e.path("MovieObject.bdmv")
	require.NoError(t, h.Save(path, false))

	out, err := e.run(t, "disasm", path)
	require.NoError(t, err)
	assert.Contains(t, out, "mobj 0:")
	assert.Contains(t, out, "Move r1, 5")
}

func TestDump(t *testing.T) {
	e := newEnv(t)
	src := e.path("00800.mpls")
	writePlaylist(t, src, false)

	out, err := e.run(t, "dump", src)
	require.NoError(t, err)
	assert.Contains(t, out, "typeindicator: MPLS")
	assert.Contains(t, out, "clipinformationfilename:")
	assert.Contains(t, out, "00001")
}

func TestInit(t *testing.T) {
	e := newEnv(t)
	configPath := e.path("nested/config.yaml")
	backupDir := e.path("journal")

	c := di.NewContainer()
	SetContainer(c)
	defer resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", configPath, "init", "--backup-dir", backupDir})
	require.NoError(t, rootCmd.Execute())

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, backupDir, cfg.Backup.Dir)
}
