package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/OranPie/rulatro/engine/rules"
)

// Load reads every .yaml and .yml file from each source, in order, into a
// sealed rule table. Within a source files load in lexical path order.
// Mixins may be defined in any file and referenced from any other.
// A *ValidationError is returned when any content is unusable; warnings
// are returned either way.
func Load(sources ...fs.FS) (*rules.Table, []string, error) {
	tbl := rules.NewTable()
	report := &ValidationError{}

	var (
		names []string
		files []*file
	)
	for _, fsys := range sources {
		// 1. Discover content files.
		found, err := contentFiles(fsys)
		if err != nil {
			return nil, nil, fmt.Errorf("listing content: %w", err)
		}

		// 2. Decode each file.
		for _, name := range found {
			f, err := decodeFile(fsys, name)
			if err != nil {
				report.Errors = append(report.Errors, err.Error())
				continue
			}
			names = append(names, name)
			files = append(files, f)
		}
	}

	// 3. Compile, with mixins from every source visible to every file.
	mixins := collectMixins(names, files, report)
	for i, f := range files {
		compile(names[i], f, tbl, mixins, report)
	}
	if len(tbl.IDs(rules.SourceJoker)) == 0 {
		report.Warnings = append(report.Warnings, "no jokers defined")
	}

	// 4. Validate and seal.
	validate(tbl, report)
	if err := tbl.Seal(); err != nil {
		for _, e := range unjoin(err) {
			report.Errors = append(report.Errors, e.Error())
		}
	}
	if len(report.Errors) > 0 {
		return nil, report.Warnings, report
	}
	return tbl, report.Warnings, nil
}

// LoadDirs loads content from directories on disk.
func LoadDirs(dirs ...string) (*rules.Table, []string, error) {
	sources, err := dirSources(dirs)
	if err != nil {
		return nil, nil, err
	}
	return Load(sources...)
}

// LoadWith loads a base source with directories layered over it.
func LoadWith(base fs.FS, dirs ...string) (*rules.Table, []string, error) {
	sources, err := dirSources(dirs)
	if err != nil {
		return nil, nil, err
	}
	return Load(append([]fs.FS{base}, sources...)...)
}

func dirSources(dirs []string) ([]fs.FS, error) {
	sources := make([]fs.FS, 0, len(dirs))
	for _, d := range dirs {
		info, err := os.Stat(d)
		if err != nil {
			return nil, fmt.Errorf("reading content directory %s: %w", d, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", d)
		}
		sources = append(sources, os.DirFS(d))
	}
	return sources, nil
}

func contentFiles(fsys fs.FS) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(path.Ext(p)) {
		case ".yaml", ".yml":
			files = append(files, p)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// decodeFile decodes one content file. A file may hold several YAML
// documents; unknown keys are rejected.
func decodeFile(fsys fs.FS, name string) (*file, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	merged := &file{}
	for {
		var f file
		err := dec.Decode(&f)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		merged.Jokers = append(merged.Jokers, f.Jokers...)
		merged.Bosses = append(merged.Bosses, f.Bosses...)
		merged.Tags = append(merged.Tags, f.Tags...)
		merged.Consumables = append(merged.Consumables, f.Consumables...)
		merged.Vouchers = append(merged.Vouchers, f.Vouchers...)
		merged.Mods = append(merged.Mods, f.Mods...)
		merged.Mixins = append(merged.Mixins, f.Mixins...)
	}
	return merged, nil
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
