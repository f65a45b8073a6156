package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/budgieapp/budgie-server/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const dayLayout = "2006-01-02"

// Intermittent occurrence dates live in a text[] column as ISO days.
func datesToStrings(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.UTC().Format(dayLayout))
	}
	return out
}

func datesFromStrings(raw []string) ([]time.Time, error) {
	var out []time.Time
	for _, s := range raw {
		d, err := time.ParseInLocation(dayLayout, s, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("failed to parse occurrence date %q: %w", s, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO budgie.users (username, email, password_hash, starting_balance, target_savings, rain_check_min,
			search_window_months, prioritize_earlier_dates, prioritize_savings_goal, is_rain_check_hard_constraint,
			projection_horizon_months, widget_timeframe_months, last_auto_update, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, last_auto_update, created_at, updated_at`
	err := r.db.QueryRow(query, user.Username, user.Email, user.PasswordHash, user.StartingBalance,
		user.TargetSavings, user.RainCheckMin, user.SearchWindowMonths, user.PrioritizeEarlierDates,
		user.PrioritizeSavingsGoal, user.IsRainCheckHardConstraint, user.ProjectionHorizonMonths,
		user.WidgetTimeframeMonths).
		Scan(&user.ID, &user.LastAutoUpdate, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	return r.findUser("email = $1", email)
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(id int64) (*models.User, error) {
	return r.findUser("id = $1", id)
}

func (r *Repository) findUser(where string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, starting_balance, target_savings, rain_check_min,
			search_window_months, prioritize_earlier_dates, prioritize_savings_goal, is_rain_check_hard_constraint,
			projection_horizon_months, widget_timeframe_months, last_auto_update, created_at, updated_at
		FROM budgie.users
		WHERE ` + where
	err := r.db.QueryRow(query, arg).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.StartingBalance,
		&user.TargetSavings, &user.RainCheckMin, &user.SearchWindowMonths, &user.PrioritizeEarlierDates,
		&user.PrioritizeSavingsGoal, &user.IsRainCheckHardConstraint, &user.ProjectionHorizonMonths,
		&user.WidgetTimeframeMonths, &user.LastAutoUpdate, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListUserIDs returns every user id; used by the periodic jobs
func (r *Repository) ListUserIDs() ([]int64, error) {
	rows, err := r.db.Query(`SELECT id FROM budgie.users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateUserSettings persists the scheduler settings of a user
func (r *Repository) UpdateUserSettings(user *models.User) error {
	query := `
		UPDATE budgie.users
		SET starting_balance = $2, target_savings = $3, rain_check_min = $4, search_window_months = $5,
			prioritize_earlier_dates = $6, prioritize_savings_goal = $7, is_rain_check_hard_constraint = $8,
			projection_horizon_months = $9, widget_timeframe_months = $10, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	if _, err := r.db.Exec(query, user.ID, user.StartingBalance, user.TargetSavings, user.RainCheckMin,
		user.SearchWindowMonths, user.PrioritizeEarlierDates, user.PrioritizeSavingsGoal,
		user.IsRainCheckHardConstraint, user.ProjectionHorizonMonths, user.WidgetTimeframeMonths); err != nil {
		return fmt.Errorf("failed to update user settings: %w", err)
	}
	return nil
}

// UpdateLastAutoUpdate advances the reconciliation watermark of a user
func (r *Repository) UpdateLastAutoUpdate(userID int64, at time.Time) error {
	query := `UPDATE budgie.users SET last_auto_update = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`
	if _, err := r.db.Exec(query, userID, at); err != nil {
		return fmt.Errorf("failed to update last auto update: %w", err)
	}
	return nil
}

// CreateIncome creates a new recurring income
func (r *Repository) CreateIncome(inc *models.Income) error {
	inc.ID = uuid.New()
	query := `
		INSERT INTO budgie.incomes (id, user_id, name, amount, frequency, recurrence_interval, tax_percent,
			start_date, end_date, dates, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(query, inc.ID, inc.UserID, inc.Name, inc.Amount, inc.Frequency, inc.Interval,
		inc.TaxPercent, inc.StartDate, inc.EndDate, pq.Array(datesToStrings(inc.Dates))).
		Scan(&inc.CreatedAt, &inc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create income: %w", err)
	}
	return nil
}

// ListIncomes returns every income of a user
func (r *Repository) ListIncomes(userID int64) ([]models.Income, error) {
	query := `
		SELECT id, user_id, name, amount, frequency, recurrence_interval, tax_percent, start_date, end_date, dates,
			created_at, updated_at
		FROM budgie.incomes
		WHERE user_id = $1
		ORDER BY created_at`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []models.Income
	for rows.Next() {
		var inc models.Income
		var raw []string
		if err := rows.Scan(&inc.ID, &inc.UserID, &inc.Name, &inc.Amount, &inc.Frequency, &inc.Interval,
			&inc.TaxPercent, &inc.StartDate, &inc.EndDate, pq.Array(&raw), &inc.CreatedAt, &inc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan income: %w", err)
		}
		dates, err := datesFromStrings(raw)
		if err != nil {
			return nil, err
		}
		inc.Dates = dates
		incomes = append(incomes, inc)
	}
	return incomes, rows.Err()
}

// DeleteIncome removes an income owned by the user
func (r *Repository) DeleteIncome(userID int64, id uuid.UUID) error {
	res, err := r.db.Exec(`DELETE FROM budgie.incomes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete income: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("income not found")
	}
	return nil
}

// CreateExpense creates a new recurring expense
func (r *Repository) CreateExpense(exp *models.Expense) error {
	exp.ID = uuid.New()
	query := `
		INSERT INTO budgie.expenses (id, user_id, name, cost, frequency, recurrence_interval,
			start_date, end_date, dates, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(query, exp.ID, exp.UserID, exp.Name, exp.Cost, exp.Frequency, exp.Interval,
		exp.StartDate, exp.EndDate, pq.Array(datesToStrings(exp.Dates))).
		Scan(&exp.CreatedAt, &exp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// ListExpenses returns every expense of a user
func (r *Repository) ListExpenses(userID int64) ([]models.Expense, error) {
	query := `
		SELECT id, user_id, name, cost, frequency, recurrence_interval, start_date, end_date, dates,
			created_at, updated_at
		FROM budgie.expenses
		WHERE user_id = $1
		ORDER BY created_at`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var exp models.Expense
		var raw []string
		if err := rows.Scan(&exp.ID, &exp.UserID, &exp.Name, &exp.Cost, &exp.Frequency, &exp.Interval,
			&exp.StartDate, &exp.EndDate, pq.Array(&raw), &exp.CreatedAt, &exp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		dates, err := datesFromStrings(raw)
		if err != nil {
			return nil, err
		}
		exp.Dates = dates
		expenses = append(expenses, exp)
	}
	return expenses, rows.Err()
}

// DeleteExpense removes an expense owned by the user
func (r *Repository) DeleteExpense(userID int64, id uuid.UUID) error {
	res, err := r.db.Exec(`DELETE FROM budgie.expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("expense not found")
	}
	return nil
}

// CreatePurchase creates a new wish-list purchase
func (r *Repository) CreatePurchase(p *models.Purchase) error {
	p.ID = uuid.New()
	query := `
		INSERT INTO budgie.purchases (id, user_id, name, price, desired_by, purchased, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(query, p.ID, p.UserID, p.Name, p.Price, p.DesiredBy, p.Purchased).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create purchase: %w", err)
	}
	return nil
}

// ListPurchases returns every purchase of a user
func (r *Repository) ListPurchases(userID int64) ([]*models.Purchase, error) {
	query := `
		SELECT id, user_id, name, price, desired_by, purchased, planned_date, predicted_balance, failure_reason,
			created_at, updated_at
		FROM budgie.purchases
		WHERE user_id = $1
		ORDER BY desired_by, price`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []*models.Purchase
	for rows.Next() {
		p := &models.Purchase{}
		var planned sql.NullTime
		var predicted sql.NullFloat64
		var reason sql.NullString
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Price, &p.DesiredBy, &p.Purchased,
			&planned, &predicted, &reason, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		applyNullableOutcome(p, planned, predicted, reason)
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

func applyNullableOutcome(p *models.Purchase, planned sql.NullTime, predicted sql.NullFloat64, reason sql.NullString) {
	if planned.Valid {
		d := planned.Time
		p.PlannedDate = &d
	}
	if predicted.Valid {
		v := predicted.Float64
		p.PredictedBalance = &v
	}
	if reason.Valid {
		s := reason.String
		p.FailureReason = &s
	}
}

// SavePurchaseOutcome persists the engine-owned output fields of a purchase
func (r *Repository) SavePurchaseOutcome(p *models.Purchase) error {
	query := `
		UPDATE budgie.purchases
		SET planned_date = $2, predicted_balance = $3, failure_reason = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	if _, err := r.db.Exec(query, p.ID, p.PlannedDate, p.PredictedBalance, p.FailureReason); err != nil {
		return fmt.Errorf("failed to save purchase outcome: %w", err)
	}
	return nil
}

// MarkPurchased flags a purchase as bought
func (r *Repository) MarkPurchased(userID int64, id uuid.UUID) error {
	query := `
		UPDATE budgie.purchases
		SET purchased = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2`
	res, err := r.db.Exec(query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark purchase: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("purchase not found")
	}
	return nil
}

// DeletePurchase removes a purchase owned by the user
func (r *Repository) DeletePurchase(userID int64, id uuid.UUID) error {
	res, err := r.db.Exec(`DELETE FROM budgie.purchases WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("purchase not found")
	}
	return nil
}

// PurchaseReminder pairs a due purchase with its owner's contact details
type PurchaseReminder struct {
	Purchase models.Purchase
	Email    string
	Username string
}

// ListPurchasesPlannedOn returns pending purchases whose planned date falls
// on the given day, joined with the owning user, for reminder delivery
func (r *Repository) ListPurchasesPlannedOn(day time.Time) ([]PurchaseReminder, error) {
	query := `
		SELECT p.id, p.user_id, p.name, p.price, p.desired_by, p.purchased, p.planned_date,
			p.predicted_balance, p.failure_reason, p.created_at, p.updated_at, u.email, u.username
		FROM budgie.purchases p
		JOIN budgie.users u ON u.id = p.user_id
		WHERE p.purchased = FALSE AND p.planned_date::date = $1::date`
	rows, err := r.db.Query(query, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list due purchases: %w", err)
	}
	defer rows.Close()

	var reminders []PurchaseReminder
	for rows.Next() {
		var rem PurchaseReminder
		var planned sql.NullTime
		var predicted sql.NullFloat64
		var reason sql.NullString
		if err := rows.Scan(&rem.Purchase.ID, &rem.Purchase.UserID, &rem.Purchase.Name, &rem.Purchase.Price,
			&rem.Purchase.DesiredBy, &rem.Purchase.Purchased, &planned, &predicted, &reason,
			&rem.Purchase.CreatedAt, &rem.Purchase.UpdatedAt, &rem.Email, &rem.Username); err != nil {
			return nil, fmt.Errorf("failed to scan due purchase: %w", err)
		}
		applyNullableOutcome(&rem.Purchase, planned, predicted, reason)
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

// CreateCheckpoint appends a balance checkpoint
func (r *Repository) CreateCheckpoint(c *models.Checkpoint) error {
	c.ID = uuid.New()
	query := `
		INSERT INTO budgie.checkpoints (id, user_id, date, amount, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		RETURNING created_at`
	err := r.db.QueryRow(query, c.ID, c.UserID, c.Date, c.Amount).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint: %w", err)
	}
	return nil
}

// LatestCheckpoint returns the most recent checkpoint of a user, or nil if
// none exists
func (r *Repository) LatestCheckpoint(userID int64) (*models.Checkpoint, error) {
	c := &models.Checkpoint{}
	query := `
		SELECT id, user_id, date, amount, created_at
		FROM budgie.checkpoints
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT 1`
	err := r.db.QueryRow(query, userID).Scan(&c.ID, &c.UserID, &c.Date, &c.Amount, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest checkpoint: %w", err)
	}
	return c, nil
}

// ListCheckpoints returns the checkpoints of a user, newest first
func (r *Repository) ListCheckpoints(userID int64) ([]models.Checkpoint, error) {
	query := `
		SELECT id, user_id, date, amount, created_at
		FROM budgie.checkpoints
		WHERE user_id = $1
		ORDER BY date DESC`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	var checkpoints []models.Checkpoint
	for rows.Next() {
		var c models.Checkpoint
		if err := rows.Scan(&c.ID, &c.UserID, &c.Date, &c.Amount, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		checkpoints = append(checkpoints, c)
	}
	return checkpoints, rows.Err()
}
