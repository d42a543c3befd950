// Package postgres реализует репозитории хранилища поверх PostgreSQL (pgx).
// Один struct на агрегат, все делят общий pgxpool. Все мутации - одиночные
// upsert/update по строке, без межтабличных транзакций: согласованность
// конкурирующих писателей обеспечивают построчная атомарность и уникальные
// индексы (см. orders.stripe_session_id).
package postgres
