package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hostfolio/payout/internal/cache"
	"github.com/hostfolio/payout/internal/clock"
	"github.com/hostfolio/payout/internal/config"
	"github.com/hostfolio/payout/internal/events"
	expensedomain "github.com/hostfolio/payout/internal/expense/domain"
	listingdomain "github.com/hostfolio/payout/internal/listing/domain"
	"github.com/hostfolio/payout/internal/observability/metrics"
	"github.com/hostfolio/payout/internal/period"
	reservationdomain "github.com/hostfolio/payout/internal/reservation/domain"
	"github.com/hostfolio/payout/internal/statement/domain"
	"github.com/hostfolio/payout/internal/statement/engine"
)

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	cfg     config.Config
	outbox  *events.Outbox
	metrics *metrics.StatementMetrics

	profiles cache.Cache[int64, listingdomain.ListingProfile]
}

// NewService constructs the statement service.
func NewService(
	db *gorm.DB,
	log *zap.Logger,
	genID *snowflake.Node,
	clk clock.Clock,
	cfg config.Config,
	outbox *events.Outbox,
) domain.Service {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	var profiles cache.Cache[int64, listingdomain.ListingProfile]
	if cfg.ListingCacheTTL > 0 {
		profiles = cache.NewTTLCacheWithNow[int64, listingdomain.ListingProfile](func() time.Time {
			return clk.Now()
		})
	} else {
		profiles = cache.NoopCache[int64, listingdomain.ListingProfile]{}
	}
	return &service{
		db:       db,
		log:      log.Named("statement.service"),
		genID:    genID,
		clock:    clk,
		cfg:      cfg,
		outbox:   outbox,
		metrics:  metrics.StatementWithConfig(metrics.Config{ServiceName: "payout", Environment: cfg.Environment}),
		profiles: profiles,
	}
}

// Calculate loads the period's reservations, expenses, and listing profiles,
// runs the calculation engine, and upserts the resulting statement keyed by
// its checksum.
func (s *service) Calculate(ctx context.Context, req domain.CalculateRequest) (*domain.Statement, error) {
	log := s.log
	started := s.clock.Now()

	if len(req.PropertyIDs) == 0 || req.OwnerID == 0 {
		return nil, domain.ErrInvalidPropertySet
	}

	start, err := period.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := period.ParseDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	rawType := req.CalculationType
	if strings.TrimSpace(rawType) == "" {
		rawType = string(engine.CalculationTypeCheckout)
	}
	calcType, err := engine.ParseCalculationType(rawType)
	if err != nil {
		return nil, err
	}

	rawSchedule := req.FeeSchedule
	if strings.TrimSpace(rawSchedule) == "" {
		rawSchedule = s.cfg.DefaultFeeSchedule
	}
	schedule, err := engine.ParseFeeSchedule(rawSchedule)
	if err != nil {
		return nil, err
	}

	propertyIDs := uniqueSorted(req.PropertyIDs)

	profiles, err := s.loadProfiles(ctx, propertyIDs)
	if err != nil {
		s.metrics.IncCalculated("failed")
		return nil, err
	}
	reservations, err := s.loadReservations(ctx, propertyIDs, start, end, calcType)
	if err != nil {
		s.metrics.IncCalculated("failed")
		return nil, err
	}
	expenses, err := s.loadExpenses(ctx, propertyIDs, start, end)
	if err != nil {
		s.metrics.IncCalculated("failed")
		return nil, err
	}

	input := engine.Input{
		Reservations: reservations,
		Expenses:     expenses,
		Profiles:     profiles,
		PropertyIDs:  propertyIDs,
		PeriodStart:  start,
		PeriodEnd:    end,
		Type:         calcType,
		FeeSchedule:  schedule,

		// The weekly-rules formulation floors negative payouts; range
		// statements surface the negative and rely on the delivery guard.
		FloorNegativePayout: calcType == engine.CalculationTypeCheckout && period.IsValidPayoutWeek(start, end),
	}

	result, err := engine.Calculate(input)
	if err != nil {
		s.metrics.IncCalculated("failed")
		return nil, err
	}

	detail, err := json.Marshal(result)
	if err != nil {
		s.metrics.IncCalculated("failed")
		return nil, fmt.Errorf("marshal statement detail: %w", err)
	}

	now := s.clock.Now().UTC()
	stmt := &domain.Statement{
		ID:          s.genID.Generate(),
		OwnerID:     req.OwnerID,
		PropertyIDs: propertyIDs,
		PeriodStart: result.Period.Start,
		PeriodEnd:   result.Period.End,
		Type:        string(result.Type),
		FeeSchedule: string(schedule),

		TotalRevenue:     result.Totals.TotalRevenue,
		TotalExpenses:    result.Totals.TotalExpenses,
		TotalUpsells:     result.Totals.TotalUpsells,
		PMCommission:     result.Totals.PMCommission,
		PMPercentage:     result.Totals.PMPercentage,
		TechFees:         result.Totals.TechFees,
		InsuranceFees:    result.Totals.InsuranceFees,
		TotalCleaningFee: result.Totals.TotalCleaningFee,
		OwnerPayout:      result.Totals.OwnerPayout,
		PropertyCount:    result.Totals.PropertyCount,

		Detail:      detail,
		Checksum:    buildChecksum(req.OwnerID, propertyIDs, result.Period.Start, result.Period.End, string(result.Type)),
		GeneratedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "checksum"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"property_ids", "fee_schedule",
			"total_revenue", "total_expenses", "total_upsells",
			"pm_commission", "pm_percentage",
			"tech_fees", "insurance_fees", "total_cleaning_fee",
			"owner_payout", "property_count",
			"detail", "generated_at", "updated_at",
		}),
	}).Create(stmt).Error; err != nil {
		s.metrics.IncCalculated("failed")
		return nil, fmt.Errorf("store statement: %w", err)
	}

	if s.outbox != nil {
		payload := events.StatementPayload{
			StatementID: stmt.ID.String(),
			OwnerID:     fmt.Sprintf("%d", stmt.OwnerID),
			PeriodStart: stmt.PeriodStart.Format("2006-01-02"),
			PeriodEnd:   stmt.PeriodEnd.Format("2006-01-02"),
			OwnerPayout: stmt.OwnerPayout,
		}
		if err := s.outbox.Publish(ctx, events.Event{
			OwnerID:   stmt.OwnerID,
			Type:      events.EventStatementGenerated,
			Payload:   payload.ToMap(),
			DedupeKey: fmt.Sprintf("%s:%s:%d", events.EventStatementGenerated, stmt.Checksum, now.Unix()),
		}); err != nil {
			log.Warn("publish statement event failed", zap.Error(err))
		}
	}

	s.metrics.ObserveCalculation(string(calcType), s.clock.Now().Sub(started))
	s.metrics.IncCalculated("success")
	s.metrics.AddWarnings("duplicate_expense", len(result.DuplicateWarnings))
	if result.CleaningMismatch != nil {
		s.metrics.AddWarnings("cleaning_mismatch", 1)
	}

	log.Info("statement calculated",
		zap.String("statement_id", stmt.ID.String()),
		zap.Int64("owner_id", stmt.OwnerID),
		zap.String("type", stmt.Type),
		zap.Int("reservations", len(result.Reservations)),
		zap.Int("expenses", len(result.Expenses)),
		zap.Float64("owner_payout", stmt.OwnerPayout),
	)

	return stmt, nil
}

// GetByID fetches a stored statement.
func (s *service) GetByID(ctx context.Context, id string) (*domain.Statement, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidStatementID
	}

	var stmt domain.Statement
	if err := s.db.WithContext(ctx).First(&stmt, "id = ?", parsed).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStatementNotFound
		}
		return nil, err
	}
	return &stmt, nil
}

func (s *service) loadProfiles(ctx context.Context, propertyIDs []int64) (map[int64]listingdomain.ListingProfile, error) {
	profiles := make(map[int64]listingdomain.ListingProfile, len(propertyIDs))
	missing := make([]int64, 0, len(propertyIDs))
	for _, id := range propertyIDs {
		if profile, ok := s.profiles.Get(id); ok {
			profiles[id] = profile
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return profiles, nil
	}

	var loaded []listingdomain.ListingProfile
	if err := s.db.WithContext(ctx).
		Where("property_id IN ?", missing).
		Find(&loaded).Error; err != nil {
		return nil, fmt.Errorf("load listing profiles: %w", err)
	}
	for _, profile := range loaded {
		profiles[profile.PropertyID] = profile
		s.profiles.Set(profile.PropertyID, profile, s.cfg.ListingCacheTTL)
	}
	for _, id := range propertyIDs {
		if _, ok := profiles[id]; !ok {
			return nil, &engine.MissingProfileError{PropertyID: id}
		}
	}
	return profiles, nil
}

func (s *service) loadReservations(ctx context.Context, propertyIDs []int64, start, end time.Time, calcType engine.CalculationType) ([]reservationdomain.Reservation, error) {
	endExclusive := period.DateOf(end).AddDate(0, 0, 1)
	startDate := period.DateOf(start)

	query := s.db.WithContext(ctx).Where("property_id IN ?", propertyIDs)
	switch calcType {
	case engine.CalculationTypeCalendar:
		query = query.Where("check_in < ? AND check_out >= ?", endExclusive, startDate)
	default:
		query = query.Where("check_out >= ? AND check_out < ?", startDate, endExclusive)
	}

	var reservations []reservationdomain.Reservation
	if err := query.Order("check_in ASC").Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	return reservations, nil
}

func (s *service) loadExpenses(ctx context.Context, propertyIDs []int64, start, end time.Time) ([]expensedomain.Expense, error) {
	endExclusive := period.DateOf(end).AddDate(0, 0, 1)

	var expenses []expensedomain.Expense
	if err := s.db.WithContext(ctx).
		Where("(property_id IN ? OR property_id IS NULL)", propertyIDs).
		Where("date >= ? AND date < ?", period.DateOf(start), endExclusive).
		Order("date ASC").
		Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	return expenses, nil
}

func uniqueSorted(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// buildChecksum derives the stable identity of a statement: owner, property
// set, period, and calculation type. Recalculations upsert on it.
func buildChecksum(ownerID int64, propertyIDs []int64, start, end time.Time, calcType string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|", ownerID)
	for _, id := range propertyIDs {
		fmt.Fprintf(&b, "%d,", id)
	}
	fmt.Fprintf(&b, "|%s|%s|%s", start.Format("2006-01-02"), end.Format("2006-01-02"), calcType)
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
