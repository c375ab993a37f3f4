// Package seed fills an empty store with a deterministic sample sales data
// set for development and demos.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"
)

type Seeder struct {
	DB     *sql.DB
	Seed   int64
	Logger *slog.Logger
	Clock  func() time.Time
}

// Run inserts the sample data set inside one transaction. A store that
// already has sellers is left untouched.
func (s *Seeder) Run(ctx context.Context) error {
	s.ensureDefaults()
	if s.DB == nil {
		return fmt.Errorf("database handle is required")
	}

	var existing int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM seller`).Scan(&existing); err != nil {
		return fmt.Errorf("check existing data: %w", err)
	}
	if existing > 0 {
		s.Logger.InfoContext(ctx, "store already contains data, skipping seed", slog.Int("sellers", existing))
		return nil
	}

	plan := BuildPlan(s.Seed, s.Clock())

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sellerIDs, err := insertSellers(ctx, tx, plan.Sellers)
	if err != nil {
		return err
	}
	customerIDs, err := insertCustomers(ctx, tx, plan.Customers, sellerIDs)
	if err != nil {
		return err
	}
	productIDs, err := insertProducts(ctx, tx, plan.Products)
	if err != nil {
		return err
	}
	itemCount, err := insertOrders(ctx, tx, plan.Orders, sellerIDs, customerIDs, productIDs)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	s.Logger.InfoContext(ctx, "seeded sample sales data",
		slog.Int("sellers", len(sellerIDs)),
		slog.Int("customers", len(customerIDs)),
		slog.Int("products", len(productIDs)),
		slog.Int("orders", len(plan.Orders)),
		slog.Int("order_items", itemCount),
	)
	return nil
}

// Clear deletes every row from the domain tables, keeping the schema.
func (s *Seeder) Clear(ctx context.Context) error {
	s.ensureDefaults()
	if s.DB == nil {
		return fmt.Errorf("database handle is required")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Reverse dependency order keeps the foreign keys satisfied.
	tables := []string{"order_product", `"order"`, "customer", "product", "seller"}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear tx: %w", err)
	}

	s.Logger.InfoContext(ctx, "cleared sample sales data")
	return nil
}

func (s *Seeder) ensureDefaults() {
	if s.Logger == nil {
		s.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.Clock == nil {
		s.Clock = time.Now
	}
}

func insertSellers(ctx context.Context, tx *sql.Tx, sellers []Seller) ([]int64, error) {
	ids := make([]int64, 0, len(sellers))
	for _, seller := range sellers {
		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO seller (name) VALUES ($1) RETURNING id`,
			seller.Name,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("insert seller %q: %w", seller.Name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func insertCustomers(ctx context.Context, tx *sql.Tx, customers []Customer, sellerIDs []int64) ([]int64, error) {
	ids := make([]int64, 0, len(customers))
	for _, customer := range customers {
		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO customer (name, seller_id) VALUES ($1, $2) RETURNING id`,
			customer.Name, sellerIDs[customer.SellerIdx],
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("insert customer %q: %w", customer.Name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func insertProducts(ctx context.Context, tx *sql.Tx, products []Product) ([]int64, error) {
	ids := make([]int64, 0, len(products))
	for _, product := range products {
		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO product (name, price) VALUES ($1, $2) RETURNING id`,
			product.Name, product.Price,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("insert product %q: %w", product.Name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func insertOrders(ctx context.Context, tx *sql.Tx, orders []Order, sellerIDs, customerIDs, productIDs []int64) (int, error) {
	itemCount := 0
	for i, order := range orders {
		var orderID int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO "order" (seller_id, customer_id, date) VALUES ($1, $2, $3) RETURNING id`,
			sellerIDs[order.SellerIdx], customerIDs[order.CustomerIdx], order.Date,
		).Scan(&orderID)
		if err != nil {
			return itemCount, fmt.Errorf("insert order %d: %w", i+1, err)
		}
		for _, item := range order.Items {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO order_product (order_id, product_id, quantity) VALUES ($1, $2, $3)`,
				orderID, productIDs[item.ProductIdx], item.Quantity,
			)
			if err != nil {
				return itemCount, fmt.Errorf("insert order %d item: %w", i+1, err)
			}
			itemCount++
		}
	}
	return itemCount, nil
}
