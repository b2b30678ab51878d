package devserver

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/erp/posconsole/internal/application/collection"
	"github.com/erp/posconsole/internal/domain/catalog"
	"github.com/erp/posconsole/internal/domain/inventory"
	"github.com/erp/posconsole/internal/domain/partner"
	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/erp/posconsole/internal/domain/trade"
	"github.com/erp/posconsole/internal/domain/warranty"
	"github.com/erp/posconsole/internal/infrastructure/resource"
)

// Store keeps every collection in memory. Records are filtered with the same
// predicates the client uses for local collections.
type Store struct {
	Serials        *collection.LocalAdapter[inventory.SerialNumber, inventory.SerialDraft]
	Registrations  *collection.LocalAdapter[warranty.Registration, warranty.RegistrationDraft]
	Claims         *collection.LocalAdapter[warranty.Claim, warranty.ClaimDraft]
	Products       *collection.LocalAdapter[catalog.Product, catalog.ProductDraft]
	Customers      *collection.LocalAdapter[partner.Customer, partner.CustomerDraft]
	Branches       *collection.LocalAdapter[partner.Branch, partner.BranchDraft]
	Distributors   *collection.LocalAdapter[partner.Distributor, partner.DistributorDraft]
	Orders         *collection.LocalAdapter[trade.Order, trade.OrderDraft]
	PurchaseOrders *collection.LocalAdapter[trade.PurchaseOrder, trade.PurchaseOrderDraft]
}

// NewStore loads ds into a new store
func NewStore(ds Dataset) *Store {
	s := &Store{}
	s.Serials = newCollection(resource.Serials, ds.Serials, s.enrichSerial)
	s.Registrations = newCollection(resource.Registrations, ds.Registrations, s.enrichRegistration)
	s.Claims = newCollection(resource.Claims, ds.Claims, s.enrichClaim)
	s.Products = newCollection(resource.Products, ds.Products, nil)
	s.Customers = newCollection(resource.Customers, ds.Customers, nil)
	s.Branches = newCollection(resource.Branches, ds.Branches, nil)
	s.Distributors = newCollection(resource.Distributors, ds.Distributors, nil)
	s.Orders = newCollection(resource.Orders, ds.Orders, s.enrichOrder)
	s.PurchaseOrders = newCollection(resource.PurchaseOrders, ds.PurchaseOrders, s.enrichPurchaseOrder)
	return s
}

// newCollection wraps records in a local adapter whose ids continue after the
// largest numeric seed id. enrich fills the joined display fields of new records.
func newCollection[T shared.Record, D any](res *resource.Resource[T, D], records []T, enrich func(T) T) *collection.LocalAdapter[T, D] {
	var next atomic.Int64
	for _, r := range records {
		if n, err := strconv.ParseInt(r.RecordID(), 10, 64); err == nil && n > next.Load() {
			next.Store(n)
		}
	}
	return collection.NewLocalAdapter(records, collection.LocalConfig[T, D]{
		Match:  res.Match(),
		Amount: res.Amount,
		Merge:  res.Merge,
		NewID:  func() string { return strconv.FormatInt(next.Add(1), 10) },
		Build: func(id string, draft D) (T, error) {
			record, err := res.Build(id, draft)
			if err != nil || enrich == nil {
				return record, err
			}
			return enrich(record), nil
		},
	})
}

func (s *Store) enrichSerial(r inventory.SerialNumber) inventory.SerialNumber {
	ctx := context.Background()
	if p, err := s.Products.Get(ctx, r.ProductID.String()); err == nil {
		r.ProductName, r.ProductSKU = p.Name, p.SKU
	}
	if b, err := s.Branches.Get(ctx, r.BranchID.String()); err == nil {
		r.BranchName = b.Name
	}
	return r
}

func (s *Store) enrichRegistration(r warranty.Registration) warranty.Registration {
	ctx := context.Background()
	page, err := s.Serials.List(ctx, shared.ListQuery{Search: r.SerialNumber})
	if err == nil {
		for _, serial := range page.Items {
			if serial.SerialNumber == r.SerialNumber {
				r.SerialID, r.ProductID, r.ProductName = serial.ID, serial.ProductID, serial.ProductName
				break
			}
		}
	}
	return r
}

func (s *Store) enrichClaim(c warranty.Claim) warranty.Claim {
	if reg, err := s.Registrations.Get(context.Background(), c.RegistrationID.String()); err == nil {
		c.SerialNumber, c.ProductName, c.CustomerName = reg.SerialNumber, reg.ProductName, reg.CustomerName
	}
	return c
}

func (s *Store) enrichOrder(o trade.Order) trade.Order {
	ctx := context.Background()
	if c, err := s.Customers.Get(ctx, o.CustomerID.String()); err == nil {
		o.CustomerName = c.Name
	}
	if b, err := s.Branches.Get(ctx, o.BranchID.String()); err == nil {
		o.BranchName = b.Name
	}
	o.Items = s.nameItems(o.Items)
	return o
}

func (s *Store) enrichPurchaseOrder(p trade.PurchaseOrder) trade.PurchaseOrder {
	ctx := context.Background()
	if d, err := s.Distributors.Get(ctx, p.DistributorID.String()); err == nil {
		p.DistributorName = d.Name
	}
	if b, err := s.Branches.Get(ctx, p.BranchID.String()); err == nil {
		p.BranchName = b.Name
	}
	p.Items = s.nameItems(p.Items)
	return p
}

func (s *Store) nameItems(items []trade.OrderItem) []trade.OrderItem {
	out := make([]trade.OrderItem, len(items))
	for i, item := range items {
		if p, err := s.Products.Get(context.Background(), item.ProductID.String()); err == nil {
			item.ProductName = p.Name
		}
		out[i] = item
	}
	return out
}
