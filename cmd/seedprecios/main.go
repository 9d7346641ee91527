// Command seedprecios carga o actualiza la tabla de precios.
// Uso: go run ./cmd/seedprecios -precio REGULAR=15.20 -precio GLP=8.10
// Sin flags carga los precios de demo.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"grifopos/internal/config"
	"grifopos/internal/infra"
	"grifopos/internal/model"
	"grifopos/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var demo = map[string]string{
	"REGULAR": "15.20",
	"PREMIUM": "16.80",
	"DIESEL":  "14.90",
	"GLP":     "8.10",
}

type precios map[string]decimal.Decimal

func (p precios) String() string { return fmt.Sprint(map[string]decimal.Decimal(p)) }

func (p precios) Set(v string) error {
	producto, valor, ok := strings.Cut(v, "=")
	if !ok || producto == "" {
		return fmt.Errorf("se espera PRODUCTO=VALOR, recibido %q", v)
	}
	d, err := decimal.NewFromString(valor)
	if err != nil || d.IsNegative() {
		return fmt.Errorf("valor inválido para %s: %q", producto, valor)
	}
	p[strings.ToUpper(producto)] = d
	return nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	tabla := precios{}
	flag.Var(tabla, "precio", "PRODUCTO=VALOR (repetible)")
	sinCache := flag.Bool("sin-redis", false, "no invalidar la cache de precios en Redis")
	flag.Parse()

	if len(tabla) == 0 {
		for producto, valor := range demo {
			_ = tabla.Set(producto + "=" + valor)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	var rdb *redis.Client
	if !*sinCache {
		if rdb, err = infra.NewRedis(cfg.RedisURL, cfg.WorkerPoolSize); err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
	}

	repo := repository.NewPrecioRepository(db, rdb, time.Duration(cfg.PrecioCacheTTLMin)*time.Minute)

	productos := make([]string, 0, len(tabla))
	for producto := range tabla {
		productos = append(productos, producto)
	}
	sort.Strings(productos)

	ctx := context.Background()
	for _, producto := range productos {
		p := &model.Precio{Producto: producto, Valor: tabla[producto]}
		if err := repo.Upsert(ctx, p); err != nil {
			log.Fatal().Err(err).Str("producto", producto).Msg("upsert precio")
		}
		fmt.Printf("✅ %-10s S/ %s\n", producto, p.Valor.StringFixed(2))
	}
}
