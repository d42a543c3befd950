//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	_ "github.com/jackc/pgx/v5/stdlib" //для goose миграций

	"github.com/shestoi/linkmarket/internal/repository"
)

func TestRepositories_Integration(t *testing.T) {
	ctx := context.Background()

	// Поднимаем PostgreSQL контейнер через testcontainers
	postgresContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("storefront_user"),
		postgres.WithPassword("storefront_password"),
	)
	require.NoError(t, err)
	defer func() {
		err := postgresContainer.Terminate(ctx)
		require.NoError(t, err)
	}()

	dsn, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Открываем *sql.DB через pgx stdlib для goose миграций
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer db.Close()

	// Ждём готовности БД через ping с retry
	var pingErr error
	for i := 0; i < 10; i++ {
		pingErr = db.PingContext(ctx)
		if pingErr == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, pingErr, "Failed to ping database after retries")

	// Вычисляем путь к migrations относительно текущего файла:
	// internal/repository/postgres -> корень модуля
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to get current file path")
	testDir := filepath.Dir(filename)
	moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(testDir)))
	migrationsDir := filepath.Join(moduleRoot, "migrations")

	err = goose.UpContext(ctx, db, migrationsDir)
	require.NoError(t, err, "Failed to run migrations")

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	users := NewUserRepository(pool)
	products := NewProductRepository(pool)
	orders := NewOrderRepository(pool)
	reviews := NewReviewRepository(pool)
	chat := NewChatRepository(pool)

	// Данные, на которые ссылаются заказы
	userID := uuid.NewString()
	productID := uuid.NewString()

	require.NoError(t, users.CreateUser(ctx, repository.User{
		ID:           userID,
		Email:        "buyer@example.com",
		PasswordHash: "x",
	}))
	require.NoError(t, products.Create(ctx, repository.Product{
		ID:      productID,
		Title:   "example.com guest post",
		SiteURL: "https://example.com",
		Price:   15000,
		Active:  true,
	}))

	t.Run("CreateUser duplicate email", func(t *testing.T) {
		err := users.CreateUser(ctx, repository.User{
			ID:           uuid.NewString(),
			Email:        "buyer@example.com",
			PasswordHash: "x",
		})
		require.ErrorIs(t, err, repository.ErrAlreadyExists)
	})

	t.Run("CreateIfAbsent enforces one order per session token", func(t *testing.T) {
		orderID := uuid.NewString()
		order := repository.Order{
			ID:              orderID,
			UserID:          userID,
			ProductID:       productID,
			Amount:          15000,
			Status:          repository.OrderPending,
			PaymentStatus:   repository.PaymentCompleted,
			StripeSessionID: "cs_int_1",
		}

		created, err := orders.CreateIfAbsent(ctx, order)
		require.NoError(t, err)
		require.True(t, created)

		// Повторная доставка: другой ID заказа, тот же токен
		dup := order
		dup.ID = uuid.NewString()
		created, err = orders.CreateIfAbsent(ctx, dup)
		require.NoError(t, err)
		require.False(t, created)

		got, err := orders.GetByID(ctx, orderID)
		require.NoError(t, err)
		require.Equal(t, "cs_int_1", got.StripeSessionID)
		require.Equal(t, repository.PaymentCompleted, got.PaymentStatus)
	})

	t.Run("orders without session token do not conflict", func(t *testing.T) {
		// NULL-ы в уникальном индексе не конфликтуют между собой
		for i := 0; i < 2; i++ {
			created, err := orders.CreateIfAbsent(ctx, repository.Order{
				ID:            uuid.NewString(),
				UserID:        userID,
				ProductID:     productID,
				Amount:        100,
				Status:        repository.OrderPending,
				PaymentStatus: repository.PaymentPending,
			})
			require.NoError(t, err)
			require.True(t, created)
		}
	})

	t.Run("SetPaymentStatusBySession", func(t *testing.T) {
		matched, err := orders.SetPaymentStatusBySession(ctx, "cs_int_1", repository.PaymentFailed)
		require.NoError(t, err)
		require.Equal(t, int64(1), matched)

		// Неизвестный токен - ноль совпадений, не ошибка
		matched, err = orders.SetPaymentStatusBySession(ctx, "pi_unknown", repository.PaymentCompleted)
		require.NoError(t, err)
		require.Zero(t, matched)
	})

	t.Run("AttachSession and MarkPaidByID", func(t *testing.T) {
		orderID := uuid.NewString()
		created, err := orders.CreateIfAbsent(ctx, repository.Order{
			ID:            orderID,
			UserID:        userID,
			ProductID:     productID,
			Amount:        15000,
			Status:        repository.OrderPending,
			PaymentStatus: repository.PaymentPending,
		})
		require.NoError(t, err)
		require.True(t, created)

		require.NoError(t, orders.AttachSession(ctx, orderID, "cs_int_retry"))
		require.NoError(t, orders.MarkPaidByID(ctx, orderID, "cs_int_retry"))

		got, err := orders.GetByID(ctx, orderID)
		require.NoError(t, err)
		require.Equal(t, repository.PaymentCompleted, got.PaymentStatus)
		require.Equal(t, "cs_int_retry", got.StripeSessionID)

		require.ErrorIs(t, orders.MarkPaidByID(ctx, uuid.NewString(), "cs_x"), repository.ErrNotFound)
	})

	t.Run("UpdateStatus and ListByUser", func(t *testing.T) {
		list, err := orders.ListByUser(ctx, userID)
		require.NoError(t, err)
		require.NotEmpty(t, list)

		require.NoError(t, orders.UpdateStatus(ctx, list[0].ID, repository.OrderProcessing))
		got, err := orders.GetByID(ctx, list[0].ID)
		require.NoError(t, err)
		require.Equal(t, repository.OrderProcessing, got.Status)
	})

	t.Run("reviews unique per product and user", func(t *testing.T) {
		review := repository.Review{
			ID:        uuid.NewString(),
			ProductID: productID,
			UserID:    userID,
			Rating:    5,
			Comment:   "fast placement",
		}
		require.NoError(t, reviews.Create(ctx, review))

		review.ID = uuid.NewString()
		require.ErrorIs(t, reviews.Create(ctx, review), repository.ErrAlreadyExists)

		list, err := reviews.ListByProduct(ctx, productID)
		require.NoError(t, err)
		require.Len(t, list, 1)
	})

	t.Run("chat messages in order", func(t *testing.T) {
		list, err := orders.ListByUser(ctx, userID)
		require.NoError(t, err)
		orderID := list[0].ID

		for _, body := range []string{"first", "second"} {
			require.NoError(t, chat.Append(ctx, repository.ChatMessage{
				ID:       uuid.NewString(),
				OrderID:  orderID,
				SenderID: userID,
				Body:     body,
			}))
		}

		messages, err := chat.ListByOrder(ctx, orderID)
		require.NoError(t, err)
		require.Len(t, messages, 2)
		require.Equal(t, "first", messages[0].Body)
	})
}
