package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/chaz8081/micropad/internal/config"
	"github.com/chaz8081/micropad/internal/control"
	"github.com/chaz8081/micropad/internal/profile"
	"github.com/chaz8081/micropad/internal/storage"
)

// ProfilesCmd groups the offline profile commands.
type ProfilesCmd struct {
	List   ProfilesListCmd   `cmd:"" help:"List stored profiles"`
	Show   ProfilesShowCmd   `cmd:"" help:"Print a profile document"`
	Export ProfilesExportCmd `cmd:"" help:"Write a profile document to a file"`
	Import ProfilesImportCmd `cmd:"" help:"Validate and store a profile document"`
}

type ProfilesListCmd struct{}

func (c *ProfilesListCmd) Run(cfg *config.Config) error {
	_, m, err := openProfiles(cfg)
	if err != nil {
		return err
	}
	active := m.ActiveProfileID()
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\t")
	for _, info := range m.List() {
		mark := ""
		if info.ID == active {
			mark = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", info.ID, info.Name, info.Size, mark)
	}
	return tw.Flush()
}

type ProfilesShowCmd struct {
	ID int `arg:"" help:"Profile slot (0-7)"`
}

func (c *ProfilesShowCmd) Run(cfg *config.Config) error {
	doc, err := profileDocument(cfg, c.ID)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(doc)
	return err
}

type ProfilesExportCmd struct {
	ID   int    `arg:"" help:"Profile slot (0-7)"`
	File string `arg:"" help:"Destination file" type:"path"`
}

func (c *ProfilesExportCmd) Run(cfg *config.Config) error {
	doc, err := profileDocument(cfg, c.ID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.File, doc, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", c.File, err)
	}
	fmt.Printf("Exported profile %d to %s\n", c.ID, c.File)
	return nil
}

type ProfilesImportCmd struct {
	File string `arg:"" help:"Profile document" type:"existingfile"`
	ID   int    `help:"Target slot (default: the document's id)" default:"-1"`
}

func (c *ProfilesImportCmd) Run(cfg *config.Config) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.File, err)
	}
	if err := control.ValidateProfile(data); err != nil {
		return err
	}
	p, err := profile.Unmarshal(data)
	if err != nil {
		return err
	}
	id := p.ID
	if c.ID >= 0 {
		id = c.ID
	}

	_, m, err := openProfiles(cfg)
	if err != nil {
		return err
	}
	if err := m.SaveProfile(id, p); err != nil {
		return err
	}
	fmt.Printf("Imported %q into slot %d\n", p.Name, id)
	return nil
}

// ResetCmd erases stored profiles and preferences.
type ResetCmd struct {
	Yes bool `short:"y" help:"Do not ask for confirmation"`
}

func (c *ResetCmd) Run(cfg *config.Config) error {
	if !c.Yes {
		ok, err := confirm(fmt.Sprintf("Erase all profiles in %s?", cfg.Storage.Dir))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}
	_, m, err := openProfiles(cfg)
	if err != nil {
		return err
	}
	if err := m.FactoryReset(); err != nil {
		return err
	}
	fmt.Printf("Restored %d default profiles in %s\n", m.ProfileCount(), cfg.Storage.Dir)
	return nil
}

// confirm asks a yes/no question on the terminal. Without a terminal there
// is nobody to ask, so it fails instead of guessing.
func confirm(question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.New("stdin is not a terminal; pass --yes to confirm")
	}
	fmt.Printf("%s [y/N] ", question)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// ConfCmd groups config file commands.
type ConfCmd struct {
	Init ConfInitCmd `cmd:"" help:"Write the default config file"`
}

type ConfInitCmd struct{}

func (c *ConfInitCmd) Run() error {
	path, err := config.WriteDefault()
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Printf("Config already exists at %s\n", config.DefaultConfigPath())
		return nil
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// openProfiles opens the profile store and restores the active profile,
// provisioning the defaults on first use.
func openProfiles(cfg *config.Config) (*storage.FileStore, *profile.Manager, error) {
	store, err := storage.NewFileStore(cfg.Storage.Dir)
	if err != nil {
		return nil, nil, err
	}
	m := profile.NewManager(store, storage.NewPrefs(cfg.Storage.Dir), profile.ManagerOptions{})
	if err := m.Init(); err != nil {
		return nil, nil, err
	}
	return store, m, nil
}

func profileDocument(cfg *config.Config, id int) ([]byte, error) {
	_, m, err := openProfiles(cfg)
	if err != nil {
		return nil, err
	}
	p, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	doc, err := profile.Marshal(p)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
