package devserver

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/erp/posconsole/internal/domain/catalog"
	"github.com/erp/posconsole/internal/domain/inventory"
	"github.com/erp/posconsole/internal/domain/partner"
	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/erp/posconsole/internal/domain/trade"
	"github.com/erp/posconsole/internal/domain/warranty"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Dataset holds the initial content of every collection
type Dataset struct {
	Serials        []inventory.SerialNumber `json:"serials"`
	Registrations  []warranty.Registration  `json:"registrations"`
	Claims         []warranty.Claim         `json:"claims"`
	Products       []catalog.Product        `json:"products"`
	Customers      []partner.Customer       `json:"customers"`
	Branches       []partner.Branch         `json:"branches"`
	Distributors   []partner.Distributor    `json:"distributors"`
	Orders         []trade.Order            `json:"orders"`
	PurchaseOrders []trade.PurchaseOrder    `json:"purchase_orders"`
}

// LoadSeedFile reads a YAML dataset. Keys follow the JSON field names of the
// API; timestamps are RFC 3339.
func LoadSeedFile(path string) (Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read seed file: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Dataset{}, fmt.Errorf("parse seed file: %w", err)
	}
	// the domain types carry json tags only, so YAML is bridged through JSON
	bridged, err := json.Marshal(doc)
	if err != nil {
		return Dataset{}, fmt.Errorf("convert seed file: %w", err)
	}
	var ds Dataset
	if err := json.Unmarshal(bridged, &ds); err != nil {
		return Dataset{}, fmt.Errorf("decode seed file: %w", err)
	}
	return ds, nil
}

// Merge replaces every section of d that is non-empty in other
func (d Dataset) Merge(other Dataset) Dataset {
	d.Serials = pick(other.Serials, d.Serials)
	d.Registrations = pick(other.Registrations, d.Registrations)
	d.Claims = pick(other.Claims, d.Claims)
	d.Products = pick(other.Products, d.Products)
	d.Customers = pick(other.Customers, d.Customers)
	d.Branches = pick(other.Branches, d.Branches)
	d.Distributors = pick(other.Distributors, d.Distributors)
	d.Orders = pick(other.Orders, d.Orders)
	d.PurchaseOrders = pick(other.PurchaseOrders, d.PurchaseOrders)
	return d
}

func pick[T any](preferred, fallback []T) []T {
	if len(preferred) > 0 {
		return preferred
	}
	return fallback
}

var branchSeeds = []struct{ name, address string }{
	{"Chi nhánh Hà Nội", "25 Tràng Tiền, Hoàn Kiếm, Hà Nội"},
	{"Chi nhánh Đà Nẵng", "102 Bạch Đằng, Hải Châu, Đà Nẵng"},
	{"Chi nhánh Hồ Chí Minh", "65 Lê Lợi, Quận 1, TP. Hồ Chí Minh"},
	{"Chi nhánh Cần Thơ", "8 Hòa Bình, Ninh Kiều, Cần Thơ"},
}

var productSeeds = []struct {
	name, brand string
	price       int64
	months      int
}{
	{"iPhone 15 Pro 256GB", "Apple", 28990000, 12},
	{"Samsung Galaxy S24 Ultra", "Samsung", 26490000, 12},
	{"Xiaomi Redmi Note 13", "Xiaomi", 4890000, 18},
	{"MacBook Air M3 13 inch", "Apple", 27990000, 12},
	{"Laptop ASUS Vivobook 15", "ASUS", 14590000, 24},
	{"iPad Air 11 inch", "Apple", 16990000, 12},
	{"Tai nghe Sony WH-1000XM5", "Sony", 7490000, 12},
	{"Đồng hồ Apple Watch Series 9", "Apple", 9990000, 12},
	{"Loa JBL Charge 5", "JBL", 3690000, 6},
	{"Màn hình Dell UltraSharp 27", "Dell", 11290000, 36},
}

var claimIssues = []string{
	"Máy không lên nguồn",
	"Màn hình bị sọc",
	"Pin sụt nhanh",
	"Loa rè khi bật âm lượng lớn",
	"Không nhận sạc",
	"Bàn phím liệt vài phím",
}

// Generate builds a consistent random dataset. The same seed and base time
// always produce the same data.
func Generate(count int, seed uint64, base time.Time) Dataset {
	f := gofakeit.New(seed)
	count = max(count, 1)
	var ds Dataset
	since := base.AddDate(0, -6, 0)

	for i, b := range branchSeeds {
		ds.Branches = append(ds.Branches, partner.Branch{
			ID:            seqID(i),
			Code:          fmt.Sprintf("CN%02d", i+1),
			Name:          b.name,
			Address:       b.address,
			Phone:         f.Numerify("028########"),
			Manager:       f.Name(),
			EmployeeCount: int64(f.Number(5, 30)),
			Status:        partner.BranchStatusActive,
			CreatedAt:     since,
		})
	}
	ds.Branches[len(ds.Branches)-1].Status = partner.BranchStatusInactive

	for i := range 5 {
		ds.Distributors = append(ds.Distributors, partner.Distributor{
			ID:          seqID(i),
			Code:        fmt.Sprintf("NPP%02d", i+1),
			Name:        f.Company(),
			ContactName: f.Name(),
			Phone:       f.Numerify("09########"),
			Email:       f.Email(),
			Address:     f.Street() + ", " + f.City(),
			TaxCode:     f.Numerify("##########"),
			Debt:        decimal.NewFromInt(int64(f.Number(0, 50)) * 1_000_000),
			Status:      partner.DistributorStatusActive,
			CreatedAt:   since,
		})
	}

	for i, p := range productSeeds {
		price := decimal.NewFromInt(p.price)
		ds.Products = append(ds.Products, catalog.Product{
			ID:             seqID(i),
			SKU:            fmt.Sprintf("SP%03d", i+1),
			Name:           p.name,
			CategoryID:     shared.ID(strconv.Itoa(i%3 + 1)),
			CategoryName:   []string{"Điện thoại", "Máy tính", "Phụ kiện"}[i%3],
			Brand:          p.brand,
			Unit:           "cái",
			Price:          price,
			CostPrice:      price.Mul(decimal.NewFromFloat(0.85)).Round(-3),
			WarrantyMonths: p.months,
			HasSerial:      true,
			Status:         catalog.ProductStatusActive,
			CreatedAt:      since,
			UpdatedAt:      since,
		})
	}

	for i := range max(count/2, 1) {
		typ := partner.CustomerTypeIndividual
		if f.Number(0, 4) == 0 {
			typ = partner.CustomerTypeBusiness
		}
		ds.Customers = append(ds.Customers, partner.Customer{
			ID:         seqID(i),
			Code:       fmt.Sprintf("KH%04d", i+1),
			Name:       f.Name(),
			Phone:      f.Numerify("09########"),
			Email:      f.Email(),
			Address:    f.Street() + ", " + f.City(),
			Type:       typ,
			Status:     partner.CustomerStatusActive,
			TotalSpent: decimal.Zero,
			CreatedAt:  f.DateRange(since, base),
		})
	}

	serialStatuses := []string{"in_stock", "in_stock", "in_stock", "sold", "sold", "warranty", "defective", "returned"}
	for i := range count {
		product := ds.Products[f.Number(0, len(ds.Products)-1)]
		branch := ds.Branches[f.Number(0, len(ds.Branches)-1)]
		created := f.DateRange(since, base)
		s := inventory.SerialNumber{
			ID:           seqID(i),
			SerialNumber: fmt.Sprintf("SN%04d", i+1),
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductSKU:   product.SKU,
			BranchID:     branch.ID,
			BranchName:   branch.Name,
			Status:       inventory.SerialStatus(f.RandomString(serialStatuses)),
			ImportPrice:  product.CostPrice,
			CreatedAt:    created,
			UpdatedAt:    created,
		}
		if s.Status != inventory.SerialStatusInStock {
			sold := created.Add(time.Duration(f.Number(1, 240)) * time.Hour)
			customer := ds.Customers[f.Number(0, len(ds.Customers)-1)]
			s.SoldAt = &sold
			s.CustomerName = customer.Name

			reg := warranty.Registration{
				ID:             seqID(len(ds.Registrations)),
				WarrantyCode:   fmt.Sprintf("BH%05d", len(ds.Registrations)+1),
				SerialID:       s.ID,
				SerialNumber:   s.SerialNumber,
				ProductID:      product.ID,
				ProductName:    product.Name,
				CustomerID:     customer.ID,
				CustomerName:   customer.Name,
				CustomerPhone:  customer.Phone,
				WarrantyMonths: product.WarrantyMonths,
				StartDate:      sold,
				EndDate:        sold.AddDate(0, product.WarrantyMonths, 0),
				Status:         warranty.RegistrationStatusActive,
				CreatedAt:      sold,
			}
			if reg.EndDate.Before(base) {
				reg.Status = warranty.RegistrationStatusExpired
			}
			ds.Registrations = append(ds.Registrations, reg)
		}
		ds.Serials = append(ds.Serials, s)
	}

	claimStatuses := []string{"pending", "processing", "completed", "rejected"}
	for i := range ds.Registrations {
		if f.Number(0, 2) != 0 {
			continue
		}
		reg := &ds.Registrations[i]
		received := f.DateRange(reg.StartDate, base)
		status := warranty.ClaimStatus(f.RandomString(claimStatuses))
		c := warranty.Claim{
			ID:               seqID(len(ds.Claims)),
			ClaimCode:        fmt.Sprintf("YC%05d", len(ds.Claims)+1),
			RegistrationID:   reg.ID,
			SerialNumber:     reg.SerialNumber,
			ProductName:      reg.ProductName,
			CustomerName:     reg.CustomerName,
			IssueDescription: f.RandomString(claimIssues),
			Cost:             decimal.Zero,
			Status:           status,
			ReceivedAt:       received,
		}
		if status == warranty.ClaimStatusCompleted {
			done := received.AddDate(0, 0, f.Number(1, 10))
			c.CompletedAt = &done
			c.Resolution = "Đã thay linh kiện"
		}
		reg.ClaimCount++
		ds.Claims = append(ds.Claims, c)
	}

	payments := []string{"cash", "card", "transfer"}
	orderStatuses := []string{"pending", "processing", "completed", "completed", "completed", "cancelled"}
	for i := range count {
		customer := &ds.Customers[f.Number(0, len(ds.Customers)-1)]
		branch := ds.Branches[f.Number(0, len(ds.Branches)-1)]
		items := randomItems(f, ds.Products)
		total := trade.SumLines(items)
		status := trade.OrderStatus(f.RandomString(orderStatuses))
		paid := total
		if status == trade.OrderStatusPending {
			paid = decimal.Zero
		}
		ds.Orders = append(ds.Orders, trade.Order{
			ID:            seqID(i),
			OrderCode:     fmt.Sprintf("DH%05d", i+1),
			CustomerID:    customer.ID,
			CustomerName:  customer.Name,
			BranchID:      branch.ID,
			BranchName:    branch.Name,
			Items:         items,
			TotalAmount:   total,
			Discount:      decimal.Zero,
			PaidAmount:    paid,
			PaymentMethod: trade.PaymentMethod(f.RandomString(payments)),
			Status:        status,
			CreatedAt:     f.DateRange(since, base),
		})
		customer.OrderCount++
		if status != trade.OrderStatusCancelled {
			customer.TotalSpent = customer.TotalSpent.Add(total)
		}
	}

	poStatuses := []string{"draft", "ordered", "received", "received", "cancelled"}
	for i := range max(count/3, 1) {
		dist := ds.Distributors[f.Number(0, len(ds.Distributors)-1)]
		branch := ds.Branches[f.Number(0, len(ds.Branches)-1)]
		items := randomItems(f, ds.Products)
		for j := range items {
			items[j].Quantity *= 5
		}
		created := f.DateRange(since, base)
		expected := created.AddDate(0, 0, f.Number(3, 14))
		po := trade.PurchaseOrder{
			ID:              seqID(i),
			Code:            fmt.Sprintf("PN%05d", i+1),
			DistributorID:   dist.ID,
			DistributorName: dist.Name,
			BranchID:        branch.ID,
			BranchName:      branch.Name,
			Items:           items,
			TotalAmount:     trade.SumLines(items),
			PaidAmount:      decimal.Zero,
			Status:          trade.PurchaseOrderStatus(f.RandomString(poStatuses)),
			ExpectedDate:    &expected,
			CreatedAt:       created,
		}
		if po.Status == trade.PurchaseOrderStatusReceived {
			po.PaidAmount = po.TotalAmount
			po.ReceivedAt = &expected
		}
		ds.PurchaseOrders = append(ds.PurchaseOrders, po)
	}

	for i := range ds.Products {
		for _, s := range ds.Serials {
			if s.ProductID != ds.Products[i].ID {
				continue
			}
			ds.Products[i].SerialCount++
			if s.Status == inventory.SerialStatusInStock {
				ds.Products[i].Stock++
			}
		}
	}
	return ds
}

func randomItems(f *gofakeit.Faker, products []catalog.Product) []trade.OrderItem {
	n := f.Number(1, 3)
	items := make([]trade.OrderItem, 0, n)
	for range n {
		p := products[f.Number(0, len(products)-1)]
		items = append(items, trade.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    int64(f.Number(1, 2)),
			UnitPrice:   p.Price,
			Discount:    decimal.Zero,
		})
	}
	return items
}

func seqID(i int) shared.ID {
	return shared.ID(strconv.Itoa(i + 1))
}
