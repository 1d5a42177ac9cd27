package importer

import (
	"slices"

	"github.com/rs/zerolog"

	"github.com/prilavok/catalog-service/internal/database"
	"github.com/prilavok/catalog-service/internal/metrics"
	feedxml "github.com/prilavok/catalog-service/internal/parsers/xml"
)

// BuildCategories walks the classifier group tree of a decoded catalog
// document and flattens it into category records tagged with the folder.
// Groups without an id or name are skipped together with their subtree.
func BuildCategories(doc map[string]interface{}, folder string, logger zerolog.Logger) []database.Category {
	classifier := feedxml.First(doc, "КоммерческаяИнформация", "Классификатор")
	if classifier == nil {
		logger.Info().Msg("no classifier in catalog document")
		return nil
	}

	acc := &categoryAccumulator{
		byID:   make(map[string]*database.Category),
		folder: folder,
		logger: logger,
	}
	for _, group := range feedxml.List(classifier, "Группы", "Группа") {
		acc.walk(group, nil)
	}

	cats := make([]database.Category, 0, len(acc.order))
	for _, id := range acc.order {
		cats = append(cats, *acc.byID[id])
	}
	return cats
}

// categoryAccumulator collects categories in first-seen order. A repeated id
// overwrites the record but keeps its original position.
type categoryAccumulator struct {
	byID   map[string]*database.Category
	order  []string
	folder string
	logger zerolog.Logger
}

func (a *categoryAccumulator) walk(group map[string]interface{}, parentID *string) {
	id := feedxml.Text(group, "Ид")
	name := feedxml.Text(group, "Наименование")
	if id == "" || name == "" {
		a.logger.Debug().Str("folder", a.folder).Msg("group without id or name skipped")
		metrics.RecordSkipped("invalid_group")
		return
	}

	if _, seen := a.byID[id]; !seen {
		a.order = append(a.order, id)
	}
	a.byID[id] = &database.Category{
		ID:       id,
		Name:     name,
		ParentID: parentID,
		Children: []string{},
		Products: []string{},
		Folder:   a.folder,
	}

	if parentID != nil {
		if parent, ok := a.byID[*parentID]; ok && !slices.Contains(parent.Children, id) {
			parent.Children = append(parent.Children, id)
		}
	}

	for _, child := range feedxml.List(group, "Группы", "Группа") {
		a.walk(child, &id)
	}
}
