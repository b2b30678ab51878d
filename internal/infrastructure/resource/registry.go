package resource

import (
	"strconv"
	"time"

	"github.com/erp/posconsole/internal/domain/catalog"
	"github.com/erp/posconsole/internal/domain/inventory"
	"github.com/erp/posconsole/internal/domain/partner"
	"github.com/erp/posconsole/internal/domain/shared"
	"github.com/erp/posconsole/internal/domain/trade"
	"github.com/erp/posconsole/internal/domain/warranty"
	"github.com/shopspring/decimal"
)

var now = time.Now

// Serials is the serial-number tracking screen
var Serials = &Resource[inventory.SerialNumber, inventory.SerialDraft]{
	Spec: Spec{
		Name:    "serials",
		Aliases: []string{"serial", "serial-numbers"},
		Title:   "Quản lý Serial",
		Path:    "/serial-numbers",
		Params: DefaultParamNames().With(
			FilterProduct, "product_id",
			FilterBranch, "branch_id",
			FilterDateFrom, "date_from",
			FilterDateTo, "date_to",
		),
		StatsPath:    "/serial-numbers/stats",
		ExportPath:   "/serial-numbers/export",
		Statuses:     statusesOf(inventory.SerialStatuses()),
		DeletePolicy: inventory.SerialDeletePolicy,
	},
	Columns: []Column[inventory.SerialNumber]{
		{"ID", func(s inventory.SerialNumber) string { return s.ID.String() }},
		{"SERIAL", func(s inventory.SerialNumber) string { return s.SerialNumber }},
		{"SẢN PHẨM", func(s inventory.SerialNumber) string { return s.ProductName }},
		{"CHI NHÁNH", func(s inventory.SerialNumber) string { return s.BranchName }},
		{"TRẠNG THÁI", func(s inventory.SerialNumber) string { return string(s.Status) }},
		{"GIÁ NHẬP", func(s inventory.SerialNumber) string { return Money(s.ImportPrice) }},
		{"NGÀY TẠO", func(s inventory.SerialNumber) string { return Date(s.CreatedAt) }},
	},
	Search: []func(inventory.SerialNumber) string{
		func(s inventory.SerialNumber) string { return s.SerialNumber },
		func(s inventory.SerialNumber) string { return s.ProductName },
		func(s inventory.SerialNumber) string { return s.ProductSKU },
	},
	Filters: map[string]func(inventory.SerialNumber) string{
		FilterProduct: func(s inventory.SerialNumber) string { return s.ProductID.String() },
		FilterBranch:  func(s inventory.SerialNumber) string { return s.BranchID.String() },
	},
	Dates:  func(s inventory.SerialNumber) time.Time { return s.CreatedAt },
	Amount: func(s inventory.SerialNumber) decimal.Decimal { return s.ImportPrice },
	Build: func(id string, d inventory.SerialDraft) (inventory.SerialNumber, error) {
		status := d.Status
		if status == "" {
			status = inventory.SerialStatusInStock
		}
		t := now()
		return inventory.SerialNumber{
			ID:           shared.ID(id),
			SerialNumber: d.SerialNumber,
			ProductID:    d.ProductID,
			BranchID:     d.BranchID,
			Status:       status,
			ImportPrice:  d.ImportPrice,
			Notes:        d.Notes,
			CreatedAt:    t,
			UpdatedAt:    t,
		}, nil
	},
	Merge: func(old, s inventory.SerialNumber, d inventory.SerialDraft) inventory.SerialNumber {
		if d.Status == "" {
			s.Status = old.Status
		}
		s.OrderID, s.CustomerName, s.SoldAt = old.OrderID, old.CustomerName, old.SoldAt
		s.CreatedAt = old.CreatedAt
		return s
	},
	EditDraft: inventory.DraftFromSerial,
}

// Registrations is the warranty registration screen
var Registrations = &Resource[warranty.Registration, warranty.RegistrationDraft]{
	Spec: Spec{
		Name:    "warranties",
		Aliases: []string{"warranty", "registrations"},
		Title:   "Đăng ký bảo hành",
		Path:    "/warranty/registrations",
		Params: DefaultParamNames().With(
			FilterProduct, "product_id",
			FilterCustomer, "customer_id",
			FilterDateFrom, "from",
			FilterDateTo, "to",
		),
		StatsPath: "/warranty/stats",
		Statuses: []string{
			string(warranty.RegistrationStatusActive),
			string(warranty.RegistrationStatusExpired),
			string(warranty.RegistrationStatusVoid),
		},
		DeletePolicy: warranty.RegistrationDeletePolicy,
	},
	Columns: []Column[warranty.Registration]{
		{"ID", func(r warranty.Registration) string { return r.ID.String() }},
		{"MÃ BH", func(r warranty.Registration) string { return r.WarrantyCode }},
		{"SERIAL", func(r warranty.Registration) string { return r.SerialNumber }},
		{"SẢN PHẨM", func(r warranty.Registration) string { return r.ProductName }},
		{"KHÁCH HÀNG", func(r warranty.Registration) string { return r.CustomerName }},
		{"HẾT HẠN", func(r warranty.Registration) string { return Date(r.EndDate) }},
		{"TRẠNG THÁI", func(r warranty.Registration) string { return string(r.Status) }},
		{"YÊU CẦU", func(r warranty.Registration) string { return strconv.FormatInt(r.ClaimCount, 10) }},
	},
	Search: []func(warranty.Registration) string{
		func(r warranty.Registration) string { return r.WarrantyCode },
		func(r warranty.Registration) string { return r.SerialNumber },
		func(r warranty.Registration) string { return r.CustomerName },
		func(r warranty.Registration) string { return r.CustomerPhone },
	},
	Filters: map[string]func(warranty.Registration) string{
		FilterProduct:  func(r warranty.Registration) string { return r.ProductID.String() },
		FilterCustomer: func(r warranty.Registration) string { return r.CustomerID.String() },
	},
	Dates: func(r warranty.Registration) time.Time { return r.StartDate },
	Build: func(id string, d warranty.RegistrationDraft) (warranty.Registration, error) {
		start := now()
		if d.StartDate != "" {
			parsed, err := time.Parse("2006-01-02", d.StartDate)
			if err != nil {
				return warranty.Registration{}, err
			}
			start = parsed
		}
		return warranty.Registration{
			ID:             shared.ID(id),
			WarrantyCode:   "BH" + id,
			SerialNumber:   d.SerialNumber,
			CustomerID:     d.CustomerID,
			CustomerName:   d.CustomerName,
			CustomerPhone:  d.CustomerPhone,
			WarrantyMonths: d.WarrantyMonths,
			StartDate:      start,
			EndDate:        start.AddDate(0, d.WarrantyMonths, 0),
			Status:         warranty.RegistrationStatusActive,
			Notes:          d.Notes,
			CreatedAt:      now(),
		}, nil
	},
	Merge: func(old, r warranty.Registration, d warranty.RegistrationDraft) warranty.Registration {
		if d.StartDate == "" {
			r.StartDate = old.StartDate
			r.EndDate = old.StartDate.AddDate(0, r.WarrantyMonths, 0)
		}
		if r.SerialNumber == old.SerialNumber && r.ProductName == "" {
			r.SerialID, r.ProductID, r.ProductName = old.SerialID, old.ProductID, old.ProductName
		}
		r.WarrantyCode, r.Status, r.ClaimCount = old.WarrantyCode, old.Status, old.ClaimCount
		r.CreatedAt = old.CreatedAt
		return r
	},
	EditDraft: func(r warranty.Registration) warranty.RegistrationDraft {
		return warranty.RegistrationDraft{
			SerialNumber:   r.SerialNumber,
			CustomerID:     r.CustomerID,
			CustomerName:   r.CustomerName,
			CustomerPhone:  r.CustomerPhone,
			WarrantyMonths: r.WarrantyMonths,
			StartDate:      r.StartDate.Format("2006-01-02"),
			Notes:          r.Notes,
		}
	},
}

// Claims is the warranty claim screen
var Claims = &Resource[warranty.Claim, warranty.ClaimDraft]{
	Spec: Spec{
		Name:    "claims",
		Aliases: []string{"claim", "warranty-claims"},
		Title:   "Yêu cầu bảo hành",
		Path:    "/warranty/claims",
		Params: DefaultParamNames().With(
			FilterRegistration, "registration_id",
			FilterDateFrom, "from",
			FilterDateTo, "to",
		),
		StatsPath: "/warranty/claims/stats",
		Statuses: []string{
			string(warranty.ClaimStatusPending),
			string(warranty.ClaimStatusProcessing),
			string(warranty.ClaimStatusCompleted),
			string(warranty.ClaimStatusRejected),
		},
		DeletePolicy: warranty.ClaimDeletePolicy,
	},
	Columns: []Column[warranty.Claim]{
		{"ID", func(c warranty.Claim) string { return c.ID.String() }},
		{"MÃ YÊU CẦU", func(c warranty.Claim) string { return c.ClaimCode }},
		{"SERIAL", func(c warranty.Claim) string { return c.SerialNumber }},
		{"KHÁCH HÀNG", func(c warranty.Claim) string { return c.CustomerName }},
		{"MÔ TẢ LỖI", func(c warranty.Claim) string { return c.IssueDescription }},
		{"TRẠNG THÁI", func(c warranty.Claim) string { return string(c.Status) }},
		{"CHI PHÍ", func(c warranty.Claim) string { return Money(c.Cost) }},
	},
	Search: []func(warranty.Claim) string{
		func(c warranty.Claim) string { return c.ClaimCode },
		func(c warranty.Claim) string { return c.SerialNumber },
		func(c warranty.Claim) string { return c.CustomerName },
	},
	Filters: map[string]func(warranty.Claim) string{
		FilterRegistration: func(c warranty.Claim) string { return c.RegistrationID.String() },
	},
	Dates:  func(c warranty.Claim) time.Time { return c.ReceivedAt },
	Amount: func(c warranty.Claim) decimal.Decimal { return c.Cost },
	Build: func(id string, d warranty.ClaimDraft) (warranty.Claim, error) {
		status := d.Status
		if status == "" {
			status = warranty.ClaimStatusPending
		}
		return warranty.Claim{
			ID:               shared.ID(id),
			ClaimCode:        "YC" + id,
			RegistrationID:   d.RegistrationID,
			IssueDescription: d.IssueDescription,
			Resolution:       d.Resolution,
			Cost:             d.Cost,
			Status:           status,
			ReceivedAt:       now(),
		}, nil
	},
	Merge: func(old, c warranty.Claim, d warranty.ClaimDraft) warranty.Claim {
		if d.Status == "" {
			c.Status = old.Status
		}
		c.ClaimCode, c.ReceivedAt, c.CompletedAt = old.ClaimCode, old.ReceivedAt, old.CompletedAt
		return c
	},
	EditDraft: func(c warranty.Claim) warranty.ClaimDraft {
		return warranty.ClaimDraft{
			RegistrationID:   c.RegistrationID,
			IssueDescription: c.IssueDescription,
			Status:           c.Status,
			Resolution:       c.Resolution,
			Cost:             c.Cost,
		}
	},
}

// Products is the catalog screen
var Products = &Resource[catalog.Product, catalog.ProductDraft]{
	Spec: Spec{
		Name:         "products",
		Aliases:      []string{"product", "catalog"},
		Title:        "Sản phẩm",
		Path:         "/products",
		Params:       DefaultParamNames().With(FilterCategory, "category_id"),
		ExportPath:   "/products/export",
		Statuses:     []string{string(catalog.ProductStatusActive), string(catalog.ProductStatusInactive)},
		DeletePolicy: catalog.ProductDeletePolicy,
	},
	Columns: []Column[catalog.Product]{
		{"ID", func(p catalog.Product) string { return p.ID.String() }},
		{"SKU", func(p catalog.Product) string { return p.SKU }},
		{"TÊN", func(p catalog.Product) string { return p.Name }},
		{"DANH MỤC", func(p catalog.Product) string { return p.CategoryName }},
		{"GIÁ BÁN", func(p catalog.Product) string { return Money(p.Price) }},
		{"TỒN KHO", func(p catalog.Product) string { return strconv.FormatInt(p.Stock, 10) }},
		{"TRẠNG THÁI", func(p catalog.Product) string { return string(p.Status) }},
	},
	Search: []func(catalog.Product) string{
		func(p catalog.Product) string { return p.SKU },
		func(p catalog.Product) string { return p.Name },
		func(p catalog.Product) string { return p.Brand },
	},
	Filters: map[string]func(catalog.Product) string{
		FilterCategory: func(p catalog.Product) string { return p.CategoryID.String() },
	},
	Dates:  func(p catalog.Product) time.Time { return p.CreatedAt },
	Amount: func(p catalog.Product) decimal.Decimal { return p.StockValue() },
	Build: func(id string, d catalog.ProductDraft) (catalog.Product, error) {
		status := d.Status
		if status == "" {
			status = catalog.ProductStatusActive
		}
		t := now()
		return catalog.Product{
			ID:             shared.ID(id),
			SKU:            d.SKU,
			Name:           d.Name,
			CategoryID:     d.CategoryID,
			Brand:          d.Brand,
			Unit:           d.Unit,
			Price:          d.Price,
			CostPrice:      d.CostPrice,
			WarrantyMonths: d.WarrantyMonths,
			HasSerial:      d.HasSerial,
			Status:         status,
			CreatedAt:      t,
			UpdatedAt:      t,
		}, nil
	},
	Merge: func(old, p catalog.Product, d catalog.ProductDraft) catalog.Product {
		if d.Status == "" {
			p.Status = old.Status
		}
		if p.CategoryID == old.CategoryID {
			p.CategoryName = old.CategoryName
		}
		p.Stock, p.SerialCount, p.CreatedAt = old.Stock, old.SerialCount, old.CreatedAt
		return p
	},
	EditDraft: func(p catalog.Product) catalog.ProductDraft {
		return catalog.ProductDraft{
			SKU:            p.SKU,
			Name:           p.Name,
			CategoryID:     p.CategoryID,
			Brand:          p.Brand,
			Unit:           p.Unit,
			Price:          p.Price,
			CostPrice:      p.CostPrice,
			WarrantyMonths: p.WarrantyMonths,
			HasSerial:      p.HasSerial,
			Status:         p.Status,
		}
	},
}

// Customers is the customer screen
var Customers = &Resource[partner.Customer, partner.CustomerDraft]{
	Spec: Spec{
		Name:       "customers",
		Aliases:    []string{"customer"},
		Title:      "Khách hàng",
		Path:       "/customers",
		Params:     DefaultParamNames().With(FilterType, "customer_type"),
		ExportPath: "/customers/export",
		Statuses: []string{
			string(partner.CustomerStatusActive),
			string(partner.CustomerStatusInactive),
			string(partner.CustomerStatusBlocked),
		},
		DeletePolicy: partner.CustomerDeletePolicy,
	},
	Columns: []Column[partner.Customer]{
		{"ID", func(c partner.Customer) string { return c.ID.String() }},
		{"MÃ", func(c partner.Customer) string { return c.Code }},
		{"TÊN", func(c partner.Customer) string { return c.Name }},
		{"ĐIỆN THOẠI", func(c partner.Customer) string { return c.Phone }},
		{"LOẠI", func(c partner.Customer) string { return string(c.Type) }},
		{"ĐƠN HÀNG", func(c partner.Customer) string { return strconv.FormatInt(c.OrderCount, 10) }},
		{"TỔNG CHI", func(c partner.Customer) string { return Money(c.TotalSpent) }},
		{"TRẠNG THÁI", func(c partner.Customer) string { return string(c.Status) }},
	},
	Search: []func(partner.Customer) string{
		func(c partner.Customer) string { return c.Code },
		func(c partner.Customer) string { return c.Name },
		func(c partner.Customer) string { return c.Phone },
		func(c partner.Customer) string { return c.Email },
	},
	Filters: map[string]func(partner.Customer) string{
		FilterType: func(c partner.Customer) string { return string(c.Type) },
	},
	Dates:  func(c partner.Customer) time.Time { return c.CreatedAt },
	Amount: func(c partner.Customer) decimal.Decimal { return c.TotalSpent },
	Build: func(id string, d partner.CustomerDraft) (partner.Customer, error) {
		status, typ := d.Status, d.Type
		if status == "" {
			status = partner.CustomerStatusActive
		}
		if typ == "" {
			typ = partner.CustomerTypeIndividual
		}
		return partner.Customer{
			ID:        shared.ID(id),
			Code:      "KH" + id,
			Name:      d.Name,
			Phone:     d.Phone,
			Email:     d.Email,
			Address:   d.Address,
			Type:      typ,
			Status:    status,
			CreatedAt: now(),
		}, nil
	},
	Merge: func(old, c partner.Customer, d partner.CustomerDraft) partner.Customer {
		if d.Status == "" {
			c.Status = old.Status
		}
		if d.Type == "" {
			c.Type = old.Type
		}
		c.Code, c.OrderCount, c.TotalSpent = old.Code, old.OrderCount, old.TotalSpent
		c.CreatedAt = old.CreatedAt
		return c
	},
	EditDraft: func(c partner.Customer) partner.CustomerDraft {
		return partner.CustomerDraft{
			Name:    c.Name,
			Phone:   c.Phone,
			Email:   c.Email,
			Address: c.Address,
			Type:    c.Type,
			Status:  c.Status,
		}
	},
}

// Branches is the branch screen; the list is small and filtered client-side
var Branches = &Resource[partner.Branch, partner.BranchDraft]{
	Spec: Spec{
		Name:         "branches",
		Aliases:      []string{"branch"},
		Title:        "Chi nhánh",
		Path:         "/branches",
		Params:       DefaultParamNames(),
		Statuses:     []string{string(partner.BranchStatusActive), string(partner.BranchStatusInactive)},
		Local:        true,
		DeletePolicy: partner.BranchDeletePolicy,
	},
	Columns: []Column[partner.Branch]{
		{"ID", func(b partner.Branch) string { return b.ID.String() }},
		{"MÃ", func(b partner.Branch) string { return b.Code }},
		{"TÊN", func(b partner.Branch) string { return b.Name }},
		{"ĐỊA CHỈ", func(b partner.Branch) string { return b.Address }},
		{"QUẢN LÝ", func(b partner.Branch) string { return b.Manager }},
		{"NHÂN VIÊN", func(b partner.Branch) string { return strconv.FormatInt(b.EmployeeCount, 10) }},
		{"TRẠNG THÁI", func(b partner.Branch) string { return string(b.Status) }},
	},
	Search: []func(partner.Branch) string{
		func(b partner.Branch) string { return b.Code },
		func(b partner.Branch) string { return b.Name },
		func(b partner.Branch) string { return b.Address },
		func(b partner.Branch) string { return b.Manager },
	},
	Dates: func(b partner.Branch) time.Time { return b.CreatedAt },
	Build: func(id string, d partner.BranchDraft) (partner.Branch, error) {
		status, code := d.Status, d.Code
		if status == "" {
			status = partner.BranchStatusActive
		}
		if code == "" {
			code = "CN" + id
		}
		return partner.Branch{
			ID:        shared.ID(id),
			Code:      code,
			Name:      d.Name,
			Address:   d.Address,
			Phone:     d.Phone,
			Manager:   d.Manager,
			Status:    status,
			CreatedAt: now(),
		}, nil
	},
	Merge: func(old, b partner.Branch, d partner.BranchDraft) partner.Branch {
		if d.Status == "" {
			b.Status = old.Status
		}
		if d.Code == "" {
			b.Code = old.Code
		}
		b.EmployeeCount, b.CreatedAt = old.EmployeeCount, old.CreatedAt
		return b
	},
	EditDraft: func(b partner.Branch) partner.BranchDraft {
		return partner.BranchDraft{
			Code:    b.Code,
			Name:    b.Name,
			Address: b.Address,
			Phone:   b.Phone,
			Manager: b.Manager,
			Status:  b.Status,
		}
	},
}

// Distributors is the supplier screen; the list is small and filtered client-side
var Distributors = &Resource[partner.Distributor, partner.DistributorDraft]{
	Spec: Spec{
		Name:         "distributors",
		Aliases:      []string{"distributor", "suppliers"},
		Title:        "Nhà phân phối",
		Path:         "/distributors",
		Params:       DefaultParamNames(),
		Statuses:     []string{string(partner.DistributorStatusActive), string(partner.DistributorStatusInactive)},
		Local:        true,
		DeletePolicy: partner.DistributorDeletePolicy,
	},
	Columns: []Column[partner.Distributor]{
		{"ID", func(d partner.Distributor) string { return d.ID.String() }},
		{"MÃ", func(d partner.Distributor) string { return d.Code }},
		{"TÊN", func(d partner.Distributor) string { return d.Name }},
		{"LIÊN HỆ", func(d partner.Distributor) string { return d.ContactName }},
		{"ĐIỆN THOẠI", func(d partner.Distributor) string { return d.Phone }},
		{"CÔNG NỢ", func(d partner.Distributor) string { return Money(d.Debt) }},
		{"TRẠNG THÁI", func(d partner.Distributor) string { return string(d.Status) }},
	},
	Search: []func(partner.Distributor) string{
		func(d partner.Distributor) string { return d.Code },
		func(d partner.Distributor) string { return d.Name },
		func(d partner.Distributor) string { return d.Phone },
		func(d partner.Distributor) string { return d.TaxCode },
	},
	Dates:  func(d partner.Distributor) time.Time { return d.CreatedAt },
	Amount: func(d partner.Distributor) decimal.Decimal { return d.Debt },
	Build: func(id string, d partner.DistributorDraft) (partner.Distributor, error) {
		status := d.Status
		if status == "" {
			status = partner.DistributorStatusActive
		}
		return partner.Distributor{
			ID:          shared.ID(id),
			Code:        "NPP" + id,
			Name:        d.Name,
			ContactName: d.ContactName,
			Phone:       d.Phone,
			Email:       d.Email,
			Address:     d.Address,
			TaxCode:     d.TaxCode,
			Status:      status,
			CreatedAt:   now(),
		}, nil
	},
	Merge: func(old, dist partner.Distributor, d partner.DistributorDraft) partner.Distributor {
		if d.Status == "" {
			dist.Status = old.Status
		}
		dist.Code, dist.Debt, dist.CreatedAt = old.Code, old.Debt, old.CreatedAt
		return dist
	},
	EditDraft: func(d partner.Distributor) partner.DistributorDraft {
		return partner.DistributorDraft{
			Name:        d.Name,
			ContactName: d.ContactName,
			Phone:       d.Phone,
			Email:       d.Email,
			Address:     d.Address,
			TaxCode:     d.TaxCode,
			Status:      d.Status,
		}
	},
}

// Orders is the sales order screen
var Orders = &Resource[trade.Order, trade.OrderDraft]{
	Spec: Spec{
		Name:    "orders",
		Aliases: []string{"order", "sales"},
		Title:   "Đơn hàng",
		Path:    "/orders",
		Params: DefaultParamNames().With(
			FilterCustomer, "customer_id",
			FilterBranch, "branch_id",
			FilterPayment, "payment_method",
			FilterDateFrom, "date_from",
			FilterDateTo, "date_to",
		),
		StatsPath:  "/orders/stats",
		ExportPath: "/orders/export",
		Statuses: []string{
			string(trade.OrderStatusPending),
			string(trade.OrderStatusProcessing),
			string(trade.OrderStatusCompleted),
			string(trade.OrderStatusCancelled),
		},
		DeletePolicy: trade.OrderDeletePolicy,
	},
	Columns: []Column[trade.Order]{
		{"ID", func(o trade.Order) string { return o.ID.String() }},
		{"MÃ ĐƠN", func(o trade.Order) string { return o.OrderCode }},
		{"KHÁCH HÀNG", func(o trade.Order) string { return o.CustomerName }},
		{"CHI NHÁNH", func(o trade.Order) string { return o.BranchName }},
		{"TỔNG TIỀN", func(o trade.Order) string { return Money(o.TotalAmount) }},
		{"ĐÃ TRẢ", func(o trade.Order) string { return Money(o.PaidAmount) }},
		{"THANH TOÁN", func(o trade.Order) string { return string(o.PaymentMethod) }},
		{"TRẠNG THÁI", func(o trade.Order) string { return string(o.Status) }},
		{"NGÀY", func(o trade.Order) string { return Date(o.CreatedAt) }},
	},
	Search: []func(trade.Order) string{
		func(o trade.Order) string { return o.OrderCode },
		func(o trade.Order) string { return o.CustomerName },
	},
	Filters: map[string]func(trade.Order) string{
		FilterCustomer: func(o trade.Order) string { return o.CustomerID.String() },
		FilterBranch:   func(o trade.Order) string { return o.BranchID.String() },
		FilterPayment:  func(o trade.Order) string { return string(o.PaymentMethod) },
	},
	Dates:  func(o trade.Order) time.Time { return o.CreatedAt },
	Amount: func(o trade.Order) decimal.Decimal { return o.TotalAmount },
	Build: func(id string, d trade.OrderDraft) (trade.Order, error) {
		status := d.Status
		if status == "" {
			status = trade.OrderStatusPending
		}
		return trade.Order{
			ID:            shared.ID(id),
			OrderCode:     "DH" + id,
			CustomerID:    d.CustomerID,
			BranchID:      d.BranchID,
			Items:         d.Items,
			TotalAmount:   d.Total(),
			Discount:      d.Discount,
			PaidAmount:    d.PaidAmount,
			PaymentMethod: d.PaymentMethod,
			Status:        status,
			Note:          d.Note,
			CreatedAt:     now(),
		}, nil
	},
	Merge: func(old, o trade.Order, d trade.OrderDraft) trade.Order {
		if d.Status == "" {
			o.Status = old.Status
		}
		o.OrderCode, o.CreatedAt = old.OrderCode, old.CreatedAt
		return o
	},
	EditDraft: func(o trade.Order) trade.OrderDraft {
		return trade.OrderDraft{
			CustomerID:    o.CustomerID,
			BranchID:      o.BranchID,
			Items:         o.Items,
			Discount:      o.Discount,
			PaidAmount:    o.PaidAmount,
			PaymentMethod: o.PaymentMethod,
			Status:        o.Status,
			Note:          o.Note,
		}
	},
}

// PurchaseOrders is the stock purchase screen
var PurchaseOrders = &Resource[trade.PurchaseOrder, trade.PurchaseOrderDraft]{
	Spec: Spec{
		Name:    "purchase-orders",
		Aliases: []string{"purchases", "purchase-order", "po"},
		Title:   "Đơn nhập hàng",
		Path:    "/purchase-orders",
		Params: DefaultParamNames().With(
			FilterDistributor, "supplier_id",
			FilterBranch, "branch_id",
			FilterDateFrom, "from",
			FilterDateTo, "to",
		),
		Statuses: []string{
			string(trade.PurchaseOrderStatusDraft),
			string(trade.PurchaseOrderStatusOrdered),
			string(trade.PurchaseOrderStatusReceived),
			string(trade.PurchaseOrderStatusCancelled),
		},
		DeletePolicy: trade.PurchaseOrderDeletePolicy,
	},
	Columns: []Column[trade.PurchaseOrder]{
		{"ID", func(p trade.PurchaseOrder) string { return p.ID.String() }},
		{"MÃ", func(p trade.PurchaseOrder) string { return p.Code }},
		{"NHÀ PHÂN PHỐI", func(p trade.PurchaseOrder) string { return p.DistributorName }},
		{"CHI NHÁNH", func(p trade.PurchaseOrder) string { return p.BranchName }},
		{"TỔNG TIỀN", func(p trade.PurchaseOrder) string { return Money(p.TotalAmount) }},
		{"CÒN NỢ", func(p trade.PurchaseOrder) string { return Money(p.Debt()) }},
		{"TRẠNG THÁI", func(p trade.PurchaseOrder) string { return string(p.Status) }},
		{"DỰ KIẾN", func(p trade.PurchaseOrder) string { return DatePtr(p.ExpectedDate) }},
	},
	Search: []func(trade.PurchaseOrder) string{
		func(p trade.PurchaseOrder) string { return p.Code },
		func(p trade.PurchaseOrder) string { return p.DistributorName },
	},
	Filters: map[string]func(trade.PurchaseOrder) string{
		FilterDistributor: func(p trade.PurchaseOrder) string { return p.DistributorID.String() },
		FilterBranch:      func(p trade.PurchaseOrder) string { return p.BranchID.String() },
	},
	Dates:  func(p trade.PurchaseOrder) time.Time { return p.CreatedAt },
	Amount: func(p trade.PurchaseOrder) decimal.Decimal { return p.TotalAmount },
	Build: func(id string, d trade.PurchaseOrderDraft) (trade.PurchaseOrder, error) {
		status := d.Status
		if status == "" {
			status = trade.PurchaseOrderStatusDraft
		}
		var expected *time.Time
		if d.ExpectedDate != "" {
			t, err := time.Parse("2006-01-02", d.ExpectedDate)
			if err != nil {
				return trade.PurchaseOrder{}, err
			}
			expected = &t
		}
		return trade.PurchaseOrder{
			ID:            shared.ID(id),
			Code:          "PN" + id,
			DistributorID: d.DistributorID,
			BranchID:      d.BranchID,
			Items:         d.Items,
			TotalAmount:   trade.SumLines(d.Items),
			PaidAmount:    d.PaidAmount,
			Status:        status,
			ExpectedDate:  expected,
			CreatedAt:     now(),
		}, nil
	},
	Merge: func(old, p trade.PurchaseOrder, d trade.PurchaseOrderDraft) trade.PurchaseOrder {
		if d.Status == "" {
			p.Status = old.Status
		}
		p.Code, p.ReceivedAt, p.CreatedAt = old.Code, old.ReceivedAt, old.CreatedAt
		return p
	},
	EditDraft: func(p trade.PurchaseOrder) trade.PurchaseOrderDraft {
		return trade.PurchaseOrderDraft{
			DistributorID: p.DistributorID,
			BranchID:      p.BranchID,
			Items:         p.Items,
			PaidAmount:    p.PaidAmount,
			ExpectedDate:  DatePtrISO(p.ExpectedDate),
			Status:        p.Status,
		}
	},
}

// DatePtrISO formats an optional date as 2006-01-02
func DatePtrISO(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// Specs returns every resource in menu order
func Specs() []Spec {
	return []Spec{
		Serials.Spec,
		Registrations.Spec,
		Claims.Spec,
		Products.Spec,
		Customers.Spec,
		Branches.Spec,
		Distributors.Spec,
		Orders.Spec,
		PurchaseOrders.Spec,
	}
}

// Lookup finds a resource spec by name or alias
func Lookup(name string) (Spec, bool) {
	for _, s := range Specs() {
		if s.Matches(name) {
			return s, true
		}
	}
	return Spec{}, false
}
