// Package cart реализует локальную корзину покупателя. Корзина живёт только
// на клиенте и сохраняется в локальном хранилище под ключом StorageKey.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/magabrotheeeer/zecko/internal/localstore"
	"github.com/magabrotheeeer/zecko/internal/validation"
)

// StorageKey ключ корзины в локальном хранилище.
const StorageKey = "cart"

var (
	// ErrItemNotFound товара нет в корзине.
	ErrItemNotFound = errors.New("item not found in cart")
	// ErrInvalidQuantity количество должно быть положительным.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrEmptyProduct не указан идентификатор товара.
	ErrEmptyProduct = errors.New("product id is required")
	// ErrTotalOverflow стоимость или количество не помещается в int64.
	ErrTotalOverflow = errors.New("cart total is too large")
)

// KV хранилище, в котором сохраняется корзина.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Item позиция корзины.
type Item struct {
	ProductID  string `json:"productId"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"priceCents"`
}

// Subtotal стоимость позиции в центах.
func (i Item) Subtotal() int64 {
	return i.PriceCents * int64(i.Quantity)
}

// Cart корзина. Методы безопасны для конкурентного вызова.
type Cart struct {
	kv KV

	mu    sync.Mutex
	items []Item
}

// Load читает корзину из kv. Отсутствие записи означает пустую корзину.
func Load(ctx context.Context, kv KV) (*Cart, error) {
	const op = "cart.Load"

	c := &Cart{kv: kv}
	raw, err := kv.Get(ctx, StorageKey)
	if errors.Is(err, localstore.ErrNotFound) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal([]byte(raw), &c.items); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// Add добавляет товар. Для товара, который уже есть в корзине, количество
// суммируется, а цена заменяется новой.
func (c *Cart) Add(ctx context.Context, productID string, quantity int, price string) error {
	const op = "cart.Add"

	productID = strings.TrimSpace(productID)
	if productID == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptyProduct)
	}
	if quantity <= 0 {
		return fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}
	cents, err := validation.PriceToCents(price)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	items := slices.Clone(c.items)
	if i := index(items, productID); i >= 0 {
		if items[i].Quantity > math.MaxInt-quantity {
			return fmt.Errorf("%s: %w", op, ErrTotalOverflow)
		}
		items[i].Quantity += quantity
		items[i].PriceCents = cents
	} else {
		items = append(items, Item{ProductID: productID, Quantity: quantity, PriceCents: cents})
	}
	if err := checkLimits(items); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return c.commit(ctx, op, items)
}

// SetQuantity меняет количество товара. Ноль убирает товар из корзины.
func (c *Cart) SetQuantity(ctx context.Context, productID string, quantity int) error {
	const op = "cart.SetQuantity"

	if quantity < 0 {
		return fmt.Errorf("%s: %w", op, ErrInvalidQuantity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := index(c.items, productID)
	if i < 0 {
		return fmt.Errorf("%s: %w", op, ErrItemNotFound)
	}
	items := slices.Clone(c.items)
	if quantity == 0 {
		items = slices.Delete(items, i, i+1)
	} else {
		items[i].Quantity = quantity
	}
	if err := checkLimits(items); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return c.commit(ctx, op, items)
}

// Remove убирает товар из корзины.
func (c *Cart) Remove(ctx context.Context, productID string) error {
	const op = "cart.Remove"

	c.mu.Lock()
	defer c.mu.Unlock()

	i := index(c.items, productID)
	if i < 0 {
		return fmt.Errorf("%s: %w", op, ErrItemNotFound)
	}
	return c.commit(ctx, op, slices.Delete(slices.Clone(c.items), i, i+1))
}

// Clear очищает корзину.
func (c *Cart) Clear(ctx context.Context) error {
	const op = "cart.Clear"

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.items = nil
	return nil
}

// Items возвращает копию позиций в порядке добавления.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Total возвращает стоимость корзины в центах.
func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, it := range c.items {
		total += it.Subtotal()
	}
	return total
}

// Count возвращает общее количество единиц товара.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// commit сохраняет items и только после успешной записи заменяет ими корзину.
func (c *Cart) commit(ctx context.Context, op string, items []Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.kv.Put(ctx, StorageKey, string(raw)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.items = items
	return nil
}

// checkLimits проверяет, что стоимость позиций, их сумма и общее количество
// представимы без переполнения.
func checkLimits(items []Item) error {
	var total int64
	count := 0
	for _, it := range items {
		if it.PriceCents > 0 && int64(it.Quantity) > math.MaxInt64/it.PriceCents {
			return ErrTotalOverflow
		}
		sub := it.Subtotal()
		if total > math.MaxInt64-sub || count > math.MaxInt-it.Quantity {
			return ErrTotalOverflow
		}
		total += sub
		count += it.Quantity
	}
	return nil
}

func index(items []Item, productID string) int {
	return slices.IndexFunc(items, func(it Item) bool { return it.ProductID == productID })
}
