package main

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close(ctx)

	seedProducts(ctx, conn)
	seedBundles(ctx, conn)

	log.Println("Seeding completed successfully!")
}

func seedProducts(ctx context.Context, conn *pgx.Conn) {
	products := []struct {
		Slug      string
		Title     string
		BasePrice int64
		Tiers     []struct {
			MinQty    int32
			MaxQty    *int32
			UnitPrice int64
		}
	}{
		{
			Slug:      "camiseta-titular",
			Title:     "Camiseta Titular",
			BasePrice: 2_000_000,
			Tiers: []struct {
				MinQty    int32
				MaxQty    *int32
				UnitPrice int64
			}{
				{MinQty: 1, MaxQty: int32Ptr(24), UnitPrice: 2_000_000},
				{MinQty: 25, MaxQty: nil, UnitPrice: 1_800_000},
			},
		},
		{
			Slug:      "short-oficial",
			Title:     "Short Oficial",
			BasePrice: 900_000,
			Tiers: []struct {
				MinQty    int32
				MaxQty    *int32
				UnitPrice int64
			}{
				{MinQty: 1, MaxQty: int32Ptr(9), UnitPrice: 900_000},
				{MinQty: 10, MaxQty: int32Ptr(24), UnitPrice: 850_000},
				{MinQty: 25, MaxQty: nil, UnitPrice: 800_000},
			},
		},
		{
			Slug:      "medias-pro",
			Title:     "Medias Pro",
			BasePrice: 120_000,
		},
	}

	log.Println("Seeding products and pricing tiers...")
	for _, p := range products {
		var productID int64
		err := conn.QueryRow(ctx, `
			INSERT INTO products (slug, title, base_price, active)
			VALUES ($1, $2, $3, true)
			ON CONFLICT (slug) DO UPDATE SET
				title = EXCLUDED.title,
				base_price = EXCLUDED.base_price,
				active = true,
				updated_at = now()
			RETURNING id;
		`, p.Slug, p.Title, p.BasePrice).Scan(&productID)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Slug, err)
			continue
		}

		if _, err := conn.Exec(ctx, `DELETE FROM pricing_tiers WHERE product_id = $1`, productID); err != nil {
			log.Printf("Failed to reset tiers for %s: %v", p.Slug, err)
			continue
		}
		for _, tier := range p.Tiers {
			_, err := conn.Exec(ctx, `
				INSERT INTO pricing_tiers (product_id, min_qty, max_qty, unit_price)
				VALUES ($1, $2, $3, $4);
			`, productID, tier.MinQty, tier.MaxQty, tier.UnitPrice)
			if err != nil {
				log.Printf("Failed to seed tier for %s: %v", p.Slug, err)
			}
		}
	}
}

func seedBundles(ctx context.Context, conn *pgx.Conn) {
	bundles := []struct {
		Code        string
		DiscountPct int32
	}{
		{"B1", 5},
		{"B5", 8},
	}

	log.Println("Seeding bundles...")
	for _, b := range bundles {
		_, err := conn.Exec(ctx, `
			INSERT INTO bundles (code, discount_pct, active)
			VALUES ($1, $2, true)
			ON CONFLICT (code) DO UPDATE SET
				discount_pct = EXCLUDED.discount_pct,
				active = true,
				updated_at = now();
		`, b.Code, b.DiscountPct)
		if err != nil {
			log.Printf("Failed to seed bundle %s: %v", b.Code, err)
		}
	}
}

func int32Ptr(v int32) *int32 {
	return &v
}
