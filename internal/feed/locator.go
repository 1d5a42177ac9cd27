// Package feed locates vendor feed folders under the content directory and
// classifies their files by the 1C export naming convention.
package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const (
	importToken = "import___"
	pricesToken = "prices___"
	restsToken  = "rests___"

	// the shared catalog export carries the import token but not this one
	catalogsToken = "catalogs"

	xmlExtension = ".xml"
)

// Folder describes one vendor feed folder and the classified files inside it.
// CatalogFiles points at the shared catalog export in the base directory, not
// at a file inside the folder.
type Folder struct {
	Name         string
	Path         string
	ImportFiles  []string
	PriceFiles   []string
	RestFiles    []string
	CatalogFiles []string
}

// Discover enumerates immediate subdirectories of baseDir and returns every
// folder holding at least one XML file, with its files classified by naming
// token. The base directory's own files are scanned for the single shared
// catalog file. Any filesystem error is fatal for the whole discovery.
func Discover(baseDir string, logger zerolog.Logger) ([]Folder, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("reading content directory %s: %w", baseDir, err)
	}

	catalogFile := findCatalogFile(entries)
	if catalogFile != "" {
		logger.Info().Str("file", catalogFile).Msg("shared catalog file found")
	} else {
		logger.Info().Msg("no shared catalog file in content directory")
	}

	var folders []Folder
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		folderPath := filepath.Join(baseDir, entry.Name())
		files, err := os.ReadDir(folderPath)
		if err != nil {
			return nil, fmt.Errorf("reading feed folder %s: %w", folderPath, err)
		}

		names := fileNames(files)
		if !containsXML(names) {
			logger.Debug().Str("folder", entry.Name()).Msg("no XML files, folder skipped")
			continue
		}

		folder := Folder{
			Name:        entry.Name(),
			Path:        folderPath,
			ImportFiles: filterByToken(names, importToken),
			PriceFiles:  filterByToken(names, pricesToken),
			RestFiles:   filterByToken(names, restsToken),
		}
		if catalogFile != "" {
			folder.CatalogFiles = []string{catalogFile}
		}

		logger.Info().
			Str("folder", folder.Name).
			Int("import", len(folder.ImportFiles)).
			Int("prices", len(folder.PriceFiles)).
			Int("rests", len(folder.RestFiles)).
			Int("catalog", len(folder.CatalogFiles)).
			Msg("feed folder discovered")

		folders = append(folders, folder)
	}

	return folders, nil
}

// findCatalogFile returns the first base-directory file carrying the import
// token without the catalogs token, or ""
func findCatalogFile(entries []os.DirEntry) string {
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.Contains(name, importToken) && !strings.Contains(name, catalogsToken) {
			return name
		}
	}
	return ""
}

func fileNames(entries []os.DirEntry) []string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names
}

func containsXML(names []string) bool {
	for _, name := range names {
		if strings.HasSuffix(name, xmlExtension) {
			return true
		}
	}
	return false
}

func filterByToken(names []string, token string) []string {
	var matched []string
	for _, name := range names {
		if strings.Contains(name, token) {
			matched = append(matched, name)
		}
	}
	return matched
}
