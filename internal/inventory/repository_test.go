package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func TestAdjuster_DecrementWithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("locks rows and floors at zero", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT stock FROM products WHERE name=\$1 FOR UPDATE`).
			WithArgs("Burger").
			WillReturnRows(pgxmock.NewRows([]string{"stock"}).AddRow(intPtr(10)))
		mock.ExpectExec(`UPDATE products SET stock=\$2`).
			WithArgs("Burger", 7).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectQuery(`SELECT stock FROM products`).
			WithArgs("Fries").
			WillReturnRows(pgxmock.NewRows([]string{"stock"}).AddRow(intPtr(1)))
		mock.ExpectExec(`UPDATE products SET stock=\$2`).
			WithArgs("Fries", 0).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		tx, err := mock.Begin(ctx)
		require.NoError(t, err)

		changes, err := NewAdjuster().DecrementWithTx(ctx, tx, []Line{
			{Product: "Burger", Quantity: 3},
			{Product: "Fries", Quantity: 4},
		})
		require.NoError(t, err)
		require.Equal(t, []Change{
			{Product: "Burger", Before: 10, After: 7},
			{Product: "Fries", Before: 1, After: 0},
		}, changes)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips untracked and deleted products", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT stock FROM products`).
			WithArgs("Gone").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(`SELECT stock FROM products`).
			WithArgs("Salad").
			WillReturnRows(pgxmock.NewRows([]string{"stock"}).AddRow(nil))

		tx, err := mock.Begin(ctx)
		require.NoError(t, err)

		changes, err := NewAdjuster().DecrementWithTx(ctx, tx, []Line{
			{Product: "Salad", Quantity: 1},
			{Product: "Gone", Quantity: 1},
		})
		require.NoError(t, err)
		require.Empty(t, changes)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates lock errors", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT stock FROM products`).
			WithArgs("Burger").
			WillReturnError(errors.New("deadlock"))

		tx, err := mock.Begin(ctx)
		require.NoError(t, err)

		_, err = NewAdjuster().DecrementWithTx(ctx, tx, []Line{{Product: "Burger", Quantity: 1}})
		require.ErrorContains(t, err, "deadlock")
	})
}

func TestAdjuster_LocksInNameOrder(t *testing.T) {
	ctx := context.Background()
	lines := []Line{
		{Product: "Pizza", Quantity: 1},
		{Product: "Burger", Quantity: 2},
		{Product: "Fries", Quantity: 1},
	}

	for name, adjust := range map[string]func(*Adjuster, context.Context, pgx.Tx, []Line) ([]Change, error){
		"decrement": (*Adjuster).DecrementWithTx,
		"restock":   (*Adjuster).RestockWithTx,
	} {
		t.Run(name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectBegin()
			for _, product := range []string{"Burger", "Fries", "Pizza"} {
				mock.ExpectQuery(`SELECT stock FROM products WHERE name=\$1 FOR UPDATE`).
					WithArgs(product).
					WillReturnRows(pgxmock.NewRows([]string{"stock"}).AddRow(intPtr(5)))
				mock.ExpectExec(`UPDATE products SET stock=\$2`).
					WithArgs(product, pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			}

			tx, err := mock.Begin(ctx)
			require.NoError(t, err)

			changes, err := adjust(NewAdjuster(), ctx, tx, lines)
			require.NoError(t, err)
			require.Len(t, changes, 3)
			require.Equal(t, "Burger", changes[0].Product)
			require.NoError(t, mock.ExpectationsWereMet())
			require.Equal(t, "Pizza", lines[0].Product, "caller's slice is not reordered")
		})
	}
}

func TestAdjuster_RestockWithTx(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT stock FROM products`).
		WithArgs("Burger").
		WillReturnRows(pgxmock.NewRows([]string{"stock"}).AddRow(intPtr(7)))
	mock.ExpectExec(`UPDATE products SET stock=\$2`).
		WithArgs("Burger", 10).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	changes, err := NewAdjuster().RestockWithTx(ctx, tx, []Line{{Product: "Burger", Quantity: 3}})
	require.NoError(t, err)
	require.Equal(t, []Change{{Product: "Burger", Before: 7, After: 10}}, changes)
	require.NoError(t, mock.ExpectationsWereMet())
}
