package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ColumnKind controls how a column value is rendered.
type ColumnKind string

const (
	ColumnText    ColumnKind = "text"
	ColumnStatus  ColumnKind = "status"
	ColumnMoney   ColumnKind = "money"
	ColumnPercent ColumnKind = "percent"
	ColumnStock   ColumnKind = "stock"
	ColumnBool    ColumnKind = "bool"
	ColumnDate    ColumnKind = "date"
)

// Column describes one displayed field of a resource table.
type Column struct {
	Field    string
	Label    string
	Kind     ColumnKind
	Fallback string // rendered when the field is missing or empty
}

// ResourceDescriptor parameterizes the generic resource view for one resource type.
// Paths are relative to the upstream base URL; "{id}" is substituted with the entity id.
type ResourceDescriptor struct {
	// Name is the URL slug of the console page (e.g., "products").
	Name string
	// Title is the page title (e.g., "Products").
	Title string
	// Singular names one entity in operator messages (e.g., "product").
	Singular string
	// ListPath is the collection endpoint.
	ListPath string
	// ItemsPath is a JMESPath expression selecting the entity array from the list response.
	// Empty means the response body is the array.
	ItemsPath string
	// GetPath is the single-entity endpoint; empty disables the detail page.
	GetPath string
	// PatchPath is the single-field update endpoint.
	PatchPath string
	// DeletePath is the delete endpoint.
	DeletePath string
	// IDField names the identifier field in entity JSON.
	IDField string
	// ToggleField is the boolean flag flipped by the toggle action; empty disables toggling.
	ToggleField string
	// AnnounceDeletes raises an operator notice after a successful delete.
	AnnounceDeletes bool
	// Columns are the displayed fields, in order.
	Columns []Column
}

// Validate checks the descriptor is usable by the resource client and view.
func (d ResourceDescriptor) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if strings.TrimSpace(d.ListPath) == "" {
		errs = append(errs, errors.New("list path is required"))
	}
	if d.GetPath != "" && !strings.Contains(d.GetPath, "{id}") {
		errs = append(errs, errors.New("get path must contain {id}"))
	}
	if d.DeletePath != "" && !strings.Contains(d.DeletePath, "{id}") {
		errs = append(errs, errors.New("delete path must contain {id}"))
	}
	if d.ToggleField != "" && !strings.Contains(d.PatchPath, "{id}") {
		errs = append(errs, errors.New("patch path must contain {id} when a toggle field is set"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("resource %q: %w", d.Name, errors.Join(errs...))
	}
	return nil
}

// IDFieldOrDefault returns the configured id field or DefaultIDField.
func (d ResourceDescriptor) IDFieldOrDefault() string {
	if d.IDField == "" {
		return DefaultIDField
	}
	return d.IDField
}

// CanToggle reports whether the descriptor defines a toggle field.
func (d ResourceDescriptor) CanToggle() bool { return d.ToggleField != "" }

// HasDetail reports whether single entities can be fetched.
func (d ResourceDescriptor) HasDetail() bool { return d.GetPath != "" }

// CanDelete reports whether the descriptor defines a delete endpoint.
func (d ResourceDescriptor) CanDelete() bool { return d.DeletePath != "" }

// EntityPath substitutes id into a path template.
func EntityPath(template, id string) string {
	return strings.ReplaceAll(template, "{id}", id)
}

// Resource names of the built-in descriptors.
const (
	ResourceProducts   = "products"
	ResourceStaff      = "staff"
	ResourceCategories = "categories"
	ResourceOrders     = "orders"
	ResourceCustomers  = "customers"
)

// BuiltinResources returns the descriptors for the admin API endpoints the console manages.
func BuiltinResources() []ResourceDescriptor {
	return []ResourceDescriptor{
		{
			Name:        ResourceProducts,
			Title:       "Products",
			Singular:    "product",
			ListPath:    "/api/products/",
			GetPath:     "/api/products/{id}",
			PatchPath:   "/api/products/{id}",
			DeletePath:  "/api/products/delete-product/{id}",
			IDField:     DefaultIDField,
			ToggleField: "published",
			Columns: []Column{
				{Field: "_id", Label: "Product ID", Kind: ColumnText},
				{Field: "title", Label: "Title", Kind: ColumnText},
				{Field: "price", Label: "Price", Kind: ColumnMoney},
				{Field: "quantity", Label: "Quantity", Kind: ColumnText, Fallback: "0"},
				{Field: "status", Label: "Status", Kind: ColumnStatus},
				{Field: "discount", Label: "Discount", Kind: ColumnPercent},
				{Field: "published", Label: "Published", Kind: ColumnBool},
				{Field: "quantity", Label: "Stock", Kind: ColumnStock},
			},
		},
		{
			Name:            ResourceStaff,
			Title:           "Staff",
			Singular:        "staff member",
			ListPath:        "/api/staff/get",
			ItemsPath:       "staffMembers",
			GetPath:         "/api/staff/{id}",
			PatchPath:       "/api/staff/{id}",
			DeletePath:      "/api/staff/{id}",
			IDField:         DefaultIDField,
			AnnounceDeletes: true,
			Columns: []Column{
				{Field: "_id", Label: "ID", Kind: ColumnText},
				{Field: "name", Label: "Name", Kind: ColumnText},
				{Field: "email", Label: "Email", Kind: ColumnText},
				{Field: "contactNumber", Label: "Contact", Kind: ColumnText},
				{Field: "joiningDate", Label: "Joining Date", Kind: ColumnDate},
				{Field: "status", Label: "Status", Kind: ColumnText, Fallback: "Active"},
			},
		},
		{
			Name:       ResourceCategories,
			Title:      "Categories",
			Singular:   "category",
			ListPath:   "/api/category/",
			GetPath:    "/api/category/{id}",
			PatchPath:  "/api/category/{id}",
			DeletePath: "/api/category/{id}",
			IDField:    DefaultIDField,
			Columns: []Column{
				{Field: "parent", Label: "Parent", Kind: ColumnText, Fallback: "N/A"},
				{Field: "slug", Label: "Slug", Kind: ColumnText},
				{Field: "type", Label: "Type", Kind: ColumnText, Fallback: "N/A"},
				{Field: "icon", Label: "Icon", Kind: ColumnText},
				{Field: "status", Label: "Status", Kind: ColumnText, Fallback: "N/A"},
			},
		},
		{
			Name:       ResourceOrders,
			Title:      "Orders",
			Singular:   "order",
			ListPath:   "/api/orders/get-orders",
			GetPath:    "/api/order/{id}",
			PatchPath:  "/api/order/{id}",
			DeletePath: "/api/order/{id}",
			IDField:    DefaultIDField,
			Columns: []Column{
				{Field: "_id", Label: "SR No", Kind: ColumnText},
				{Field: "time", Label: "Time", Kind: ColumnText},
				{Field: "shippingAddress", Label: "Shipping Address", Kind: ColumnText},
				{Field: "phone", Label: "Phone", Kind: ColumnText},
				{Field: "method", Label: "Method", Kind: ColumnText},
				{Field: "amount", Label: "Amount", Kind: ColumnMoney},
				{Field: "status", Label: "Status", Kind: ColumnStatus},
			},
		},
		{
			Name:        ResourceCustomers,
			Title:       "Customers",
			Singular:    "user",
			ListPath:    "/api/user/",
			GetPath:     "/api/user/{id}",
			PatchPath:   "/api/user/{id}",
			DeletePath:  "/api/user/{id}",
			IDField:     DefaultIDField,
			ToggleField: "active",
			Columns: []Column{
				{Field: "_id", Label: "User ID", Kind: ColumnText},
				{Field: "name", Label: "Name", Kind: ColumnText},
				{Field: "email", Label: "Email", Kind: ColumnText},
				{Field: "phone", Label: "Phone", Kind: ColumnText},
				{Field: "role", Label: "Role", Kind: ColumnText},
				{Field: "active", Label: "Active", Kind: ColumnBool},
			},
		},
	}
}

// ResourceCatalog is a lookup of descriptors by name.
type ResourceCatalog struct {
	byName map[string]ResourceDescriptor
	order  []string
}

// NewResourceCatalog validates and indexes descriptors. Duplicate names are rejected.
func NewResourceCatalog(descriptors []ResourceDescriptor) (*ResourceCatalog, error) {
	c := &ResourceCatalog{byName: make(map[string]ResourceDescriptor, len(descriptors))}
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate resource %q", d.Name)
		}
		c.byName[d.Name] = d
		c.order = append(c.order, d.Name)
	}
	return c, nil
}

// Get returns the descriptor for name.
func (c *ResourceCatalog) Get(name string) (ResourceDescriptor, bool) {
	if c == nil {
		return ResourceDescriptor{}, false
	}
	d, ok := c.byName[name]
	return d, ok
}

// All returns descriptors in registration order.
func (c *ResourceCatalog) All() []ResourceDescriptor {
	if c == nil {
		return nil
	}
	out := make([]ResourceDescriptor, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.byName[name])
	}
	return out
}

// Names returns the sorted resource names.
func (c *ResourceCatalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.order))
	copy(names, c.order)
	sort.Strings(names)
	return names
}

// Next returns the resource registered after name, wrapping around.
func (c *ResourceCatalog) Next(name string) string {
	if c == nil || len(c.order) == 0 {
		return ""
	}
	for i, n := range c.order {
		if n == name {
			return c.order[(i+1)%len(c.order)]
		}
	}
	return c.order[0]
}
