// Package memory содержит in-memory реализации репозиториев.
// Используются для разработки и тестирования; в production их место занимают
// реализации из пакета postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shestoi/linkmarket/internal/repository"
)

// OrderRepository реализует repository.OrderRepository в памяти
// Защищён мьютексом для безопасного доступа из разных горутин
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]repository.Order
}

// NewOrderRepository создаёт новый in-memory репозиторий заказов
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]repository.Order),
	}
}

// CreateIfAbsent вставляет заказ, если токен сессии ещё не занят
// Повторяет семантику уникального индекса по stripe_session_id
func (r *OrderRepository) CreateIfAbsent(ctx context.Context, order repository.Order) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.StripeSessionID != "" {
		for _, existing := range r.orders {
			if existing.StripeSessionID == order.StripeSessionID {
				return false, nil
			}
		}
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	r.orders[order.ID] = order
	return true, nil
}

// GetByID получает заказ по ID
func (r *OrderRepository) GetByID(ctx context.Context, id string) (repository.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, exists := r.orders[id]
	if !exists {
		return repository.Order{}, repository.ErrNotFound
	}
	return order, nil
}

// AttachSession записывает session token на существующий заказ
func (r *OrderRepository) AttachSession(ctx context.Context, orderID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, exists := r.orders[orderID]
	if !exists {
		return repository.ErrNotFound
	}
	order.StripeSessionID = sessionID
	r.orders[orderID] = order
	return nil
}

// MarkPaidByID помечает заказ оплаченным и записывает session token
func (r *OrderRepository) MarkPaidByID(ctx context.Context, orderID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, exists := r.orders[orderID]
	if !exists {
		return repository.ErrNotFound
	}
	order.PaymentStatus = repository.PaymentCompleted
	order.StripeSessionID = sessionID
	r.orders[orderID] = order
	return nil
}

// SetPaymentStatusBySession обновляет payment_status заказов с данным токеном
func (r *OrderRepository) SetPaymentStatusBySession(ctx context.Context, sessionID string, status repository.PaymentStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sessionID == "" {
		return 0, nil
	}
	var matched int64
	for id, order := range r.orders {
		if order.StripeSessionID == sessionID {
			order.PaymentStatus = status
			r.orders[id] = order
			matched++
		}
	}
	return matched, nil
}

// ListByUser возвращает заказы покупателя, новые первыми
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]repository.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]repository.Order, 0)
	for _, order := range r.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	sortOrdersByCreatedAtDesc(orders)
	return orders, nil
}

// List возвращает все заказы, новые первыми
func (r *OrderRepository) List(ctx context.Context) ([]repository.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]repository.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orders = append(orders, order)
	}
	sortOrdersByCreatedAtDesc(orders)
	return orders, nil
}

// UpdateStatus обновляет fulfillment статус заказа
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status repository.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, exists := r.orders[orderID]
	if !exists {
		return repository.ErrNotFound
	}
	order.Status = status
	r.orders[orderID] = order
	return nil
}

func sortOrdersByCreatedAtDesc(orders []repository.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

// ProductRepository реализует repository.ProductRepository в памяти
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]repository.Product
}

// NewProductRepository создаёт новый in-memory репозиторий каталога
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[string]repository.Product),
	}
}

// Create сохраняет новую позицию каталога
func (r *ProductRepository) Create(ctx context.Context, product repository.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	r.products[product.ID] = product
	return nil
}

// Update обновляет позицию каталога
func (r *ProductRepository) Update(ctx context.Context, product repository.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.products[product.ID]
	if !exists {
		return repository.ErrNotFound
	}
	product.CreatedAt = existing.CreatedAt
	r.products[product.ID] = product
	return nil
}

// Delete удаляет позицию каталога
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[id]; !exists {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

// GetByID получает позицию каталога по ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (repository.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[id]
	if !exists {
		return repository.Product{}, repository.ErrNotFound
	}
	return product, nil
}

// List возвращает позиции каталога
func (r *ProductRepository) List(ctx context.Context, onlyActive bool) ([]repository.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]repository.Product, 0, len(r.products))
	for _, product := range r.products {
		if onlyActive && !product.Active {
			continue
		}
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

// UserRepository реализует repository.UserRepository в памяти
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]repository.User // по ID
}

// NewUserRepository создаёт новый in-memory репозиторий профилей
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]repository.User),
	}
}

// CreateUser сохраняет нового пользователя
func (r *UserRepository) CreateUser(ctx context.Context, user repository.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrAlreadyExists
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.users[user.ID] = user
	return nil
}

// GetByEmail получает пользователя по email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return repository.User{}, repository.ErrNotFound
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return repository.User{}, repository.ErrNotFound
	}
	return user, nil
}

// ChatRepository реализует repository.ChatRepository в памяти
type ChatRepository struct {
	mu       sync.RWMutex
	messages map[string][]repository.ChatMessage // по order_id
}

// NewChatRepository создаёт новый in-memory репозиторий переписки
func NewChatRepository() *ChatRepository {
	return &ChatRepository{
		messages: make(map[string][]repository.ChatMessage),
	}
}

// Append добавляет сообщение в переписку заказа
func (r *ChatRepository) Append(ctx context.Context, msg repository.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	r.messages[msg.OrderID] = append(r.messages[msg.OrderID], msg)
	return nil
}

// ListByOrder возвращает сообщения заказа в хронологическом порядке
func (r *ChatRepository) ListByOrder(ctx context.Context, orderID string) ([]repository.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	messages := make([]repository.ChatMessage, len(r.messages[orderID]))
	copy(messages, r.messages[orderID])
	return messages, nil
}

// ReviewRepository реализует repository.ReviewRepository в памяти
type ReviewRepository struct {
	mu      sync.RWMutex
	reviews map[string][]repository.Review // по product_id
}

// NewReviewRepository создаёт новый in-memory репозиторий отзывов
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		reviews: make(map[string][]repository.Review),
	}
}

// Create сохраняет отзыв
func (r *ReviewRepository) Create(ctx context.Context, review repository.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.reviews[review.ProductID] {
		if existing.UserID == review.UserID {
			return repository.ErrAlreadyExists
		}
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}
	r.reviews[review.ProductID] = append(r.reviews[review.ProductID], review)
	return nil
}

// ListByProduct возвращает отзывы позиции, новые первыми
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]repository.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reviews := make([]repository.Review, len(r.reviews[productID]))
	copy(reviews, r.reviews[productID])
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews, nil
}
