// Package classify maps items to presentation categories by file extension.
package classify

import (
	"github.com/any-index/any-index/internal/drive"
)

// Category is a presentation group. The zero value means unclassified.
type Category string

const (
	CategoryNone   Category = ""
	CategoryStream Category = "stream"
	CategoryImage  Category = "image"
	CategoryVideo  Category = "video"
	CategoryDash   Category = "dash"
	CategoryAudio  Category = "audio"
	CategoryCode   Category = "code"
	CategoryDoc    Category = "doc"
)

// Priority is the fixed lookup order; the first group listing an extension wins.
var Priority = []Category{
	CategoryStream,
	CategoryImage,
	CategoryVideo,
	CategoryDash,
	CategoryAudio,
	CategoryCode,
	CategoryDoc,
}

// Classifier holds the extension sets per category.
type Classifier struct {
	groups map[Category]map[string]struct{}
}

// New builds a classifier from category name -> extension list. Unknown
// category names are ignored.
func New(extensions map[string][]string) *Classifier {
	c := &Classifier{groups: make(map[Category]map[string]struct{}, len(Priority))}
	for _, cat := range Priority {
		set := make(map[string]struct{})
		for _, ext := range extensions[string(cat)] {
			if ext != "" {
				set[ext] = struct{}{}
			}
		}
		c.groups[cat] = set
	}
	return c
}

// Classify returns the first category in Priority whose set has the item's extension.
func (c *Classifier) Classify(item drive.Item) Category {
	if item.IsFolder {
		return CategoryNone
	}
	ext := item.Extension()
	if ext == "" {
		return CategoryNone
	}
	for _, cat := range Priority {
		if _, ok := c.groups[cat][ext]; ok {
			return cat
		}
	}
	return CategoryNone
}

// Annotate returns a copy of item with Ext populated.
func Annotate(item drive.Item) drive.Item {
	item.Ext = item.Extension()
	return item
}
