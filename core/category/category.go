package category

import (
	"context"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/coursecatalog/backend/core"
)

var ErrNotFound = errors.New("category not found")

// Category is a node of the category tree; root categories have no parent.
type Category struct {
	ID       int    `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	ParentID *int   `db:"parent_id" json:"parent_id"`
}

// NewCategory contains information needed to create a new Category.
type NewCategory struct {
	Name     string `form:"name" validate:"required,notblank,max=100"`
	ParentID *int   `form:"parent_id" validate:"omitempty,gt=0"`
}

// Node is a Category with its children, used to render the filter form.
type Node struct {
	Category
	Depth    int
	Children []*Node
}

type (
	Repository interface {
		CreateCategory(ctx context.Context, cat Category, exec ...core.DBExecutor) (Category, error)
		QueryAllCategories(ctx context.Context, exec ...core.DBExecutor) ([]Category, error)
		GetCategoryByID(ctx context.Context, id int, exec ...core.DBExecutor) (Category, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, nc NewCategory) (Category, error) {
	nc.Name = core.CleanString(nc.Name)
	if err := svc.validate.Struct(nc); err != nil {
		return Category{}, err
	}
	cat := Category{Name: nc.Name, ParentID: nc.ParentID}
	if nc.ParentID != nil {
		if _, err := svc.repo.GetCategoryByID(ctx, *nc.ParentID); err != nil {
			if err == ErrNotFound {
				return Category{}, core.NewValidationError(err, core.FieldError{Field: "parent_id", Error: err.Error()})
			}
			return Category{}, err
		}
	}
	return svc.repo.CreateCategory(ctx, cat)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Category, error) {
	return svc.repo.QueryAllCategories(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Category, error) {
	return svc.repo.GetCategoryByID(ctx, id)
}

// Tree returns the categories as a forest, siblings ordered by name.
func (svc *Service) Tree(ctx context.Context) ([]*Node, error) {
	cats, err := svc.repo.QueryAllCategories(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(cats), nil
}

// BuildTree arranges cats into a forest. Categories whose parent is missing become roots.
func BuildTree(cats []Category) []*Node {
	nodes := make(map[int]*Node, len(cats))
	for _, c := range cats {
		nodes[c.ID] = &Node{Category: c}
	}

	var roots []*Node
	for _, c := range cats {
		n := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok && parent != n {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	var walk func(ns []*Node, depth int)
	walk = func(ns []*Node, depth int) {
		sort.Slice(ns, func(i, j int) bool { return ns[i].Name < ns[j].Name })
		for _, n := range ns {
			n.Depth = depth
			walk(n.Children, depth+1)
		}
	}
	walk(roots, 0)
	return roots
}

// Flatten lists the tree depth first.
func Flatten(roots []*Node) []*Node {
	var out []*Node
	var walk func(ns []*Node)
	walk = func(ns []*Node) {
		for _, n := range ns {
			out = append(out, n)
			walk(n.Children)
		}
	}
	walk(roots)
	return out
}
