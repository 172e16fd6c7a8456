package fetcher

import (
	"context"

	"discussionblog/entities"
)

// FindCategory returns the first category whose name equals name exactly.
func FindCategory(categories []entities.Category, name string) (entities.Category, error) {
	for _, c := range categories {
		if c.Name == name {
			return c, nil
		}
	}
	return entities.Category{}, &CategoryNotFoundError{Name: name}
}

// ResolveCategoryID fetches the category list and maps name to its id. It does not
// cache: every call issues a categories request. blog.Service memoizes the list
// itself and matches names with FindCategory.
func ResolveCategoryID(ctx context.Context, pages PageFetcher, name string) (string, error) {
	categories, err := pages.FetchCategories(ctx)
	if err != nil {
		return "", err
	}

	category, err := FindCategory(categories, name)
	if err != nil {
		return "", err
	}
	return category.ID, nil
}
