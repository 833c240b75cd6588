package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/geocoder89/storefront/internal/client"
	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/domain/product"
	"github.com/geocoder89/storefront/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	apiURL := flag.String("api", client.DefaultBaseURL, "storefront API base URL")
	file := flag.String("file", "products.json", "JSON array of products")
	email := flag.String("email", cfg.AdminEmail, "admin email")
	password := flag.String("password", cfg.AdminPassword, "admin password")
	flag.Parse()

	log := observability.NewLogger(cfg.Env)

	if err := run(*apiURL, *file, *email, *password, log); err != nil {
		log.Error("seed failed", "err", err)
		os.Exit(1)
	}
}

func run(apiURL, file, email, password string, log *slog.Logger) error {
	raw, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	var products []product.BulkProduct
	if err := json.Unmarshal(raw, &products); err != nil {
		return fmt.Errorf("decode %s: %w", file, err)
	}
	if len(products) == 0 {
		return fmt.Errorf("%s holds no products", file)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := client.New(apiURL)

	login, err := c.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("admin login: %w", err)
	}

	created, err := c.WithToken(login.Token).AddManyProducts(ctx, products)
	if err != nil {
		return fmt.Errorf("add products: %w", err)
	}

	log.Info("products seeded", "count", len(created), "api", apiURL)
	return nil
}
