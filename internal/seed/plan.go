package seed

import (
	"math/rand"
	"time"
)

// Plan is the full sample data set for one seeding run. Records reference
// each other by slice index; the seeder resolves indexes to database ids
// at insert time.
type Plan struct {
	Sellers   []Seller
	Customers []Customer
	Products  []Product
	Orders    []Order
}

type Seller struct {
	Name string
}

type Customer struct {
	Name      string
	SellerIdx int
}

type Product struct {
	Name  string
	Price string
}

type Order struct {
	SellerIdx   int
	CustomerIdx int
	Date        time.Time
	Items       []OrderItem
}

type OrderItem struct {
	ProductIdx int
	Quantity   int
}

const (
	orderCount       = 100
	orderSpreadDays  = 90
	minItemsPerOrder = 2
	maxItemsPerOrder = 5
	maxItemQuantity  = 10
)

var sellerNames = []string{
	"John Smith",
	"Maria Garcia",
	"Robert Johnson",
	"Ana Silva",
	"Michael Brown",
	"Sarah Davis",
	"Carlos Rodriguez",
	"Emily Wilson",
	"James Martinez",
	"Patricia Anderson",
	"David Taylor",
	"Jennifer Thomas",
	"Christopher Moore",
	"Linda Jackson",
	"Daniel White",
	"Barbara Harris",
	"Matthew Clark",
	"Jessica Lewis",
	"Anthony Walker",
	"Susan Hall",
}

var customerNames = []string{
	"Tech Corp",
	"Global Industries",
	"StartUp Inc",
	"Mega Store",
	"Small Business LLC",
	"Enterprise Solutions",
	"Local Shop",
	"Big Company",
	"Medium Corp",
	"Tiny Business",
	"Digital Ventures",
	"Retail Chain",
	"Marketing Agency",
	"Construction Co",
	"Healthcare Plus",
	"Finance Group",
	"Education Center",
	"Food Services",
	"Transport Ltd",
	"Energy Systems",
	"Manufacturing Co",
	"Real Estate Inc",
	"Insurance Partners",
	"Legal Associates",
	"Consulting Firm",
	"Design Studio",
	"Software House",
	"Hardware Store",
	"Fashion Boutique",
	"Sports Equipment",
	"Auto Parts",
	"Electronics Shop",
	"Furniture World",
	"Garden Center",
	"Pet Supplies",
	"Book Store",
	"Music Shop",
	"Art Gallery",
	"Travel Agency",
	"Hotel Chain",
	"Restaurant Group",
	"Cafe Network",
	"Bakery Delights",
	"Grocery Market",
	"Pharmacy Plus",
	"Beauty Salon",
	"Fitness Center",
	"Dental Clinic",
	"Veterinary Care",
	"Home Services",
}

// Prices are decimal strings so they reach NUMERIC(10,2) columns without
// float rounding.
var productCatalog = []Product{
	{Name: "Laptop", Price: "999.99"},
	{Name: "Mouse", Price: "29.99"},
	{Name: "Keyboard", Price: "79.99"},
	{Name: "Monitor", Price: "299.99"},
	{Name: "Headphones", Price: "149.99"},
	{Name: "Webcam", Price: "89.99"},
	{Name: "USB Cable", Price: "9.99"},
	{Name: "Desk Chair", Price: "199.99"},
	{Name: "Desk Lamp", Price: "39.99"},
	{Name: "Notebook", Price: "4.99"},
	{Name: "Desktop Computer", Price: "1299.99"},
	{Name: "Tablet", Price: "499.99"},
	{Name: "Smartphone", Price: "799.99"},
	{Name: "Printer", Price: "249.99"},
	{Name: "Scanner", Price: "179.99"},
	{Name: "External Hard Drive", Price: "119.99"},
	{Name: "SSD 1TB", Price: "139.99"},
	{Name: "RAM 16GB", Price: "89.99"},
	{Name: "Graphics Card", Price: "599.99"},
	{Name: "Motherboard", Price: "199.99"},
	{Name: "Power Supply", Price: "79.99"},
	{Name: "PC Case", Price: "69.99"},
	{Name: "Cooling Fan", Price: "29.99"},
	{Name: "Router", Price: "99.99"},
	{Name: "Network Switch", Price: "149.99"},
	{Name: "USB Hub", Price: "34.99"},
	{Name: "HDMI Cable", Price: "19.99"},
	{Name: "Microphone", Price: "129.99"},
	{Name: "Speakers", Price: "159.99"},
	{Name: "Wireless Mouse", Price: "39.99"},
}

// BuildPlan returns the same plan for the same seed and day. Customers and
// orders rotate through the sellers, and order dates spread evenly over the
// trailing ninety days so date-range questions have rows to hit.
func BuildPlan(seedValue int64, now time.Time) Plan {
	rnd := rand.New(rand.NewSource(seedValue))
	today := now.UTC().Truncate(24 * time.Hour)

	plan := Plan{
		Sellers:   make([]Seller, 0, len(sellerNames)),
		Customers: make([]Customer, 0, len(customerNames)),
		Products:  make([]Product, len(productCatalog)),
		Orders:    make([]Order, 0, orderCount),
	}
	for _, name := range sellerNames {
		plan.Sellers = append(plan.Sellers, Seller{Name: name})
	}
	for i, name := range customerNames {
		plan.Customers = append(plan.Customers, Customer{Name: name, SellerIdx: i % len(sellerNames)})
	}
	copy(plan.Products, productCatalog)

	for i := 0; i < orderCount; i++ {
		daysAgo := (i * orderSpreadDays) / orderCount
		plan.Orders = append(plan.Orders, Order{
			SellerIdx:   i % len(plan.Sellers),
			CustomerIdx: i % len(plan.Customers),
			Date:        today.AddDate(0, 0, -daysAgo),
			Items:       pickItems(rnd, len(plan.Products)),
		})
	}
	return plan
}

// pickItems selects two to five distinct products with quantities one to ten.
func pickItems(rnd *rand.Rand, productCount int) []OrderItem {
	count := minItemsPerOrder + rnd.Intn(maxItemsPerOrder-minItemsPerOrder+1)
	picks := rnd.Perm(productCount)[:count]

	items := make([]OrderItem, 0, count)
	for _, idx := range picks {
		items = append(items, OrderItem{ProductIdx: idx, Quantity: 1 + rnd.Intn(maxItemQuantity)})
	}
	return items
}
