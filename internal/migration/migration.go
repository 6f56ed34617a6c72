package migration

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/avstrong/tourbooking/internal/booking"
	"github.com/avstrong/tourbooking/internal/logger"
)

type storage interface {
	BeginTransaction(ctx context.Context, level string) (context.Context, error)
	CommitTransaction(ctx context.Context) error
	RollbackTransaction(ctx context.Context) error
	SaveOfferings(ctx context.Context, offerings []*booking.Offering) error
}

func lkr(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// Offerings is the demo catalog loaded on start.
func Offerings() []*booking.Offering {
	return []*booking.Offering{
		{
			ID:         "ella-hills-resort",
			ProviderID: "provider-ella",
			Title:      "Ella Hills Resort",
			Prices: map[booking.Package]decimal.Decimal{
				booking.PackagePerNight:  lkr(5000), //nolint:gomnd
				booking.PackageFullDay:   lkr(5000), //nolint:gomnd
				booking.PackageHalfBoard: lkr(7500), //nolint:gomnd
				booking.PackageFullBoard: lkr(9800), //nolint:gomnd
			},
			CapacityPerRoom:    3, //nolint:gomnd
			AvailableRoomCount: 6, //nolint:gomnd
		},
		{
			ID:         "mirissa-beach-villa",
			ProviderID: "provider-mirissa",
			Title:      "Mirissa Beach Villa",
			Prices: map[booking.Package]decimal.Decimal{
				booking.PackagePerNight:  lkr(12000), //nolint:gomnd
				booking.PackageFullBoard: lkr(18500), //nolint:gomnd
			},
			CapacityPerRoom:    2, //nolint:gomnd
			AvailableRoomCount: 2, //nolint:gomnd
		},
	}
}

func Up(ctx context.Context, l *logger.Logger, storage storage) (err error) {
	ctx, err = storage.BeginTransaction(ctx, "")
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if err = storage.RollbackTransaction(ctx); err != nil {
				l.LogErrorf("Could not rollback migration transaction after panic %v", p)
			}

			l.LogInfo("Migration transaction has been roll backed after panic")

			panic(p)
		}

		if err != nil {
			if rErr := storage.RollbackTransaction(ctx); rErr != nil {
				l.LogErrorf("Could not rollback migration transaction after error %v", rErr.Error())
			}

			l.LogInfo("Migration transaction has been roll backed after error")

			return
		}

		if err = storage.CommitTransaction(ctx); err != nil {
			l.LogErrorf("Could not commit migration transaction, err %v", err.Error())
		}

		l.LogInfo("Migration transaction has been committed")
	}()

	if err = storage.SaveOfferings(ctx, Offerings()); err != nil {
		return fmt.Errorf("save offerings to storage: %w", err)
	}

	return nil
}
