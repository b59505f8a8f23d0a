package assets

import "path/filepath"

// Category describes one logical group of assets to install: a source
// subdirectory of the fetched tree, a destination subdirectory under the
// editor's user configuration root, and an optional selection restricting
// the sync to named files or folders within the source.
type Category struct {
	Name   string   `yaml:"name"`
	Source string   `yaml:"source"`
	Dest   string   `yaml:"dest"`
	Select []string `yaml:"select"`
}

// SourceDir returns the category's source directory inside the fetched
// tree, honoring an optional repository subdirectory.
func (c Category) SourceDir(fetchRoot, subdir string) string {
	return filepath.Join(fetchRoot, subdir, c.Source)
}

// DestDir returns the category's destination directory under the editor's
// user configuration root. An empty Dest targets the root itself.
func (c Category) DestDir(userConfigRoot string) string {
	if c.Dest == "" {
		return userConfigRoot
	}
	return filepath.Join(userConfigRoot, c.Dest)
}

// DefaultCategories is the standard asset layout: prompt and instruction
// folders mirrored wholesale, plus a curated pick of agent files installed
// alongside the prompts.
func DefaultCategories() []Category {
	return []Category{
		{
			Name:   "prompts",
			Source: "prompts",
			Dest:   "prompts",
		},
		{
			Name:   "instructions",
			Source: "instructions",
			Dest:   "instructions",
		},
		{
			Name:   "agents",
			Source: "agents",
			Dest:   "prompts",
			Select: []string{"plan.agent.md", "review.agent.md"},
		},
	}
}
