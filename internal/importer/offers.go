package importer

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prilavok/catalog-service/internal/metrics"
	feedxml "github.com/prilavok/catalog-service/internal/parsers/xml"
)

// ApplyPrices joins price offers onto already persisted products of the
// folder, matching on (id, folder). Offers without an id or a resolvable unit
// price are skipped; an offer with no matching product is a no-op. Returns the
// number of products updated.
func ApplyPrices(ctx context.Context, store Store, doc map[string]interface{}, folder string, logger zerolog.Logger) (int, error) {
	matched := 0
	for _, offer := range listOffers(doc) {
		id := feedxml.Text(offer, "Ид")
		raw := feedxml.Text(offer, "Цены", "Цена", "ЦенаЗаЕдиницу")
		if id == "" || raw == "" {
			continue
		}

		price, ok := leadingNumber(raw)
		if !ok {
			logger.Debug().Str("id", id).Str("price", raw).Msg("unparseable price skipped")
			metrics.RecordSkipped("unparseable_price")
			continue
		}

		ok, err := store.SetProductPrice(ctx, id, folder, price)
		if err != nil {
			return matched, err
		}
		if ok {
			matched++
		}
	}
	metrics.RecordOffersMatched("price", matched)
	return matched, nil
}

// ApplyStocks joins stock offers onto persisted products, matching on
// (id, folder). Warehouse quantities arrive as decimal strings ("4.000") and
// truncate to an integer; non-numeric values fall back to 0. Returns the
// number of products updated.
func ApplyStocks(ctx context.Context, store Store, doc map[string]interface{}, folder string, logger zerolog.Logger) (int, error) {
	matched := 0
	for _, offer := range listOffers(doc) {
		id := feedxml.Text(offer, "Ид")
		raw := feedxml.Text(offer, "Остатки", "Остаток", "Склад", "Количество")
		if id == "" || raw == "" {
			continue
		}

		quantity := 0
		if v, ok := leadingNumber(raw); ok {
			quantity = int(v)
		} else {
			logger.Debug().Str("id", id).Str("quantity", raw).Msg("non-numeric quantity treated as zero")
		}

		ok, err := store.SetProductQuantity(ctx, id, folder, quantity)
		if err != nil {
			return matched, err
		}
		if ok {
			matched++
		}
	}
	metrics.RecordOffersMatched("stock", matched)
	return matched, nil
}

func listOffers(doc map[string]interface{}) []map[string]interface{} {
	return feedxml.List(doc, "КоммерческаяИнформация", "ПакетПредложений", "Предложения", "Предложение")
}

// leadingNumber parses the longest decimal number at the start of s. Vendor
// exports pad values with unit suffixes and decimal tails ("4.000 шт",
// "123.45 руб"); the leading prefix is the value.
func leadingNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	intStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	hasInt := end > intStart
	if end < len(s) && s[end] == '.' {
		fracStart := end + 1
		fracEnd := fracStart
		for fracEnd < len(s) && s[fracEnd] >= '0' && s[fracEnd] <= '9' {
			fracEnd++
		}
		if fracEnd > fracStart {
			end = fracEnd
		} else if !hasInt {
			return 0, false
		}
	} else if !hasInt {
		return 0, false
	}

	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
