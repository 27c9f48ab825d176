package service

import (
	"context"
	"strings"

	"training_portal/internal/apiclient"
	"training_portal/internal/model"
)

// AllCategories is the category filter value that matches everything.
const AllCategories = "all"

type ResourceFilter struct {
	Search   string
	Category string
}

type ResourceList struct {
	Resources  []model.Resource `json:"resources"`
	Categories []string         `json:"categories"`
	Total      int              `json:"total"`
}

type ResourceService struct{}

func NewResourceService() *ResourceService {
	return &ResourceService{}
}

func (s *ResourceService) List(ctx context.Context, api *apiclient.Client, filter ResourceFilter) (*ResourceList, error) {
	resources, err := api.ListResources(ctx)
	if err != nil {
		return nil, err
	}
	return &ResourceList{
		Resources:  FilterResources(resources, filter),
		Categories: ResourceCategories(resources),
		Total:      len(resources),
	}, nil
}

func (s *ResourceService) Get(ctx context.Context, api *apiclient.Client, resourceID int) (*model.Resource, error) {
	return api.GetResource(ctx, resourceID)
}

func (s *ResourceService) Create(ctx context.Context, api *apiclient.Client, req model.CreateResourceRequest) (*model.Resource, error) {
	if strings.TrimSpace(req.Category) == "" {
		req.Category = model.DefaultResourceCategory
	}
	return api.CreateResource(ctx, req)
}

// FilterResources keeps resources whose title or description contains the
// search text, case-insensitively, and whose category matches.
func FilterResources(resources []model.Resource, filter ResourceFilter) []model.Resource {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	category := filter.Category
	out := make([]model.Resource, 0, len(resources))
	for _, r := range resources {
		if category != "" && category != AllCategories && r.Category != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Title), search) &&
			!strings.Contains(strings.ToLower(r.Description), search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ResourceCategories lists "all" followed by each distinct category in first-seen order.
func ResourceCategories(resources []model.Resource) []string {
	out := []string{AllCategories}
	seen := make(map[string]bool)
	for _, r := range resources {
		if r.Category == "" || seen[r.Category] {
			continue
		}
		seen[r.Category] = true
		out = append(out, r.Category)
	}
	return out
}
