package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/budgieapp/budgie-server/internal/config"
	"github.com/budgieapp/budgie-server/internal/engine"
	"github.com/budgieapp/budgie-server/internal/integrations/ofx"
	"github.com/budgieapp/budgie-server/internal/models"
	"github.com/budgieapp/budgie-server/internal/repository"
)

// Service handles business logic
type Service struct {
	repo   *repository.Repository
	log    *logrus.Logger
	config *config.Config
	engine *engine.Engine
}

// NewService initializes a new service
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{repo: repo, log: log, config: cfg, engine: engine.New(log)}
}

// Register creates a new user with hashed password and default settings
func (s *Service) Register(username, email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:                  username,
		Email:                     email,
		PasswordHash:              string(hashedPassword),
		SearchWindowMonths:        3,
		PrioritizeEarlierDates:    true,
		PrioritizeSavingsGoal:     true,
		IsRainCheckHardConstraint: true,
		ProjectionHorizonMonths:   12,
		WidgetTimeframeMonths:     3,
	}

	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// GetUser returns a user's profile and settings
func (s *Service) GetUser(userID int64) (*models.User, error) {
	return s.repo.FindUserByID(userID)
}

// UpdateSettings persists the scheduler settings of a user
func (s *Service) UpdateSettings(user *models.User) error {
	if user.SearchWindowMonths < 1 {
		return fmt.Errorf("search window must be at least one month")
	}
	if user.ProjectionHorizonMonths < 1 {
		return fmt.Errorf("projection horizon must be at least one month")
	}
	if err := s.repo.UpdateUserSettings(user); err != nil {
		return err
	}
	s.log.Infof("Settings updated for user %d", user.ID)
	return nil
}

// CreateIncome validates and stores a recurring income
func (s *Service) CreateIncome(inc *models.Income) error {
	if !inc.Frequency.Valid() {
		return fmt.Errorf("unknown frequency %q", inc.Frequency)
	}
	if inc.Amount < 0 {
		return fmt.Errorf("income amount must be non-negative")
	}
	if inc.TaxPercent < 0 || inc.TaxPercent > 100 {
		return fmt.Errorf("tax percent must be between 0 and 100")
	}
	if inc.EndDate != nil && inc.EndDate.Before(inc.StartDate) {
		return fmt.Errorf("end date must not precede start date")
	}
	if inc.Interval < 1 {
		inc.Interval = 1
	}
	return s.repo.CreateIncome(inc)
}

// ListIncomes returns the user's incomes
func (s *Service) ListIncomes(userID int64) ([]models.Income, error) {
	return s.repo.ListIncomes(userID)
}

// DeleteIncome removes an income
func (s *Service) DeleteIncome(userID int64, id uuid.UUID) error {
	return s.repo.DeleteIncome(userID, id)
}

// CreateExpense validates and stores a recurring expense
func (s *Service) CreateExpense(exp *models.Expense) error {
	if !exp.Frequency.Valid() {
		return fmt.Errorf("unknown frequency %q", exp.Frequency)
	}
	if exp.Cost < 0 {
		return fmt.Errorf("expense cost must be non-negative")
	}
	if exp.EndDate != nil && exp.EndDate.Before(exp.StartDate) {
		return fmt.Errorf("end date must not precede start date")
	}
	if exp.Interval < 1 {
		exp.Interval = 1
	}
	return s.repo.CreateExpense(exp)
}

// ListExpenses returns the user's expenses
func (s *Service) ListExpenses(userID int64) ([]models.Expense, error) {
	return s.repo.ListExpenses(userID)
}

// DeleteExpense removes an expense
func (s *Service) DeleteExpense(userID int64, id uuid.UUID) error {
	return s.repo.DeleteExpense(userID, id)
}

// CreatePurchase validates and stores a wish-list purchase
func (s *Service) CreatePurchase(p *models.Purchase) error {
	if p.Price < 0 {
		return fmt.Errorf("purchase price must be non-negative")
	}
	if p.DesiredBy.IsZero() {
		return fmt.Errorf("desired-by date is required")
	}
	return s.repo.CreatePurchase(p)
}

// ListPurchases returns the user's purchases
func (s *Service) ListPurchases(userID int64) ([]*models.Purchase, error) {
	return s.repo.ListPurchases(userID)
}

// MarkPurchased flags a purchase as bought
func (s *Service) MarkPurchased(userID int64, id uuid.UUID) error {
	return s.repo.MarkPurchased(userID, id)
}

// DeletePurchase removes a purchase
func (s *Service) DeletePurchase(userID int64, id uuid.UUID) error {
	return s.repo.DeletePurchase(userID, id)
}

// AddCheckpoint appends a manual balance checkpoint
func (s *Service) AddCheckpoint(c *models.Checkpoint) error {
	if c.Date.IsZero() {
		c.Date = time.Now()
	}
	if err := s.repo.CreateCheckpoint(c); err != nil {
		return err
	}
	s.log.Infof("Checkpoint added for user %d: %.2f as of %s", c.UserID, c.Amount, c.Date.Format("2006-01-02"))
	return nil
}

// ListCheckpoints returns the user's checkpoints, newest first
func (s *Service) ListCheckpoints(userID int64) ([]models.Checkpoint, error) {
	return s.repo.ListCheckpoints(userID)
}

// ImportStatement parses an OFX bank statement and records its ledger balance
// as a new checkpoint
func (s *Service) ImportStatement(userID int64, statement []byte) (*models.Checkpoint, error) {
	bal, err := ofx.ParseLedgerBalance(statement)
	if err != nil {
		return nil, fmt.Errorf("failed to parse statement: %w", err)
	}

	checkpoint := &models.Checkpoint{
		UserID: userID,
		Date:   bal.AsOf,
		Amount: bal.Amount,
	}
	if err := s.repo.CreateCheckpoint(checkpoint); err != nil {
		return nil, err
	}

	s.log.Infof("Statement imported for user %d: balance %.2f as of %s", userID, bal.Amount, bal.AsOf.Format("2006-01-02"))
	return checkpoint, nil
}

// currentBalance resolves the user's balance: the latest checkpoint, or the
// configured starting balance when no checkpoint exists
func (s *Service) currentBalance(user *models.User) (engine.Balance, error) {
	checkpoint, err := s.repo.LatestCheckpoint(user.ID)
	if err != nil {
		return engine.Balance{}, err
	}
	if checkpoint == nil {
		return engine.Balance{Current: user.StartingBalance}, nil
	}
	return engine.Balance{Current: checkpoint.Amount, CheckpointDate: checkpoint.Date}, nil
}

// loadProjectionInputs gathers everything one engine run needs
func (s *Service) loadProjectionInputs(userID int64) (*models.User, []models.Income, []models.Expense, []*models.Purchase, engine.Balance, error) {
	user, err := s.repo.FindUserByID(userID)
	if err != nil {
		return nil, nil, nil, nil, engine.Balance{}, err
	}
	incomes, err := s.repo.ListIncomes(userID)
	if err != nil {
		return nil, nil, nil, nil, engine.Balance{}, err
	}
	expenses, err := s.repo.ListExpenses(userID)
	if err != nil {
		return nil, nil, nil, nil, engine.Balance{}, err
	}
	purchases, err := s.repo.ListPurchases(userID)
	if err != nil {
		return nil, nil, nil, nil, engine.Balance{}, err
	}
	bal, err := s.currentBalance(user)
	if err != nil {
		return nil, nil, nil, nil, engine.Balance{}, err
	}
	return user, incomes, expenses, purchases, bal, nil
}

// SchedulePurchases runs one projection-and-scheduling pass for the user and
// persists the outcome of every pending purchase
func (s *Service) SchedulePurchases(userID int64, now time.Time) ([]*models.Purchase, error) {
	user, incomes, expenses, purchases, bal, err := s.loadProjectionInputs(userID)
	if err != nil {
		return nil, err
	}

	s.engine.Schedule(user, incomes, expenses, purchases, bal, now)

	for _, p := range purchases {
		if p.Purchased {
			continue
		}
		if err := s.repo.SavePurchaseOutcome(p); err != nil {
			return nil, err
		}
	}

	s.log.Infof("Scheduled %d purchases for user %d", len(purchases), userID)
	return purchases, nil
}

// Timeline returns the chronological projection of income, expense and
// scheduled purchase events for display
func (s *Service) Timeline(userID int64, now time.Time) ([]models.TimelineEvent, error) {
	user, incomes, expenses, purchases, _, err := s.loadProjectionInputs(userID)
	if err != nil {
		return nil, err
	}

	events := s.engine.Timeline(user, incomes, expenses, purchases, now)
	out := make([]models.TimelineEvent, 0, len(events))
	for _, ev := range events {
		te := models.TimelineEvent{
			Date:   ev.Date.Format("2006-01-02"),
			Amount: ev.Amount,
			Kind:   string(ev.Kind),
			Title:  ev.Title,
		}
		if ev.Purchase != nil {
			id := ev.Purchase.ID.String()
			te.PurchaseID = &id
		}
		out = append(out, te)
	}
	return out, nil
}

// Widget builds the at-a-glance balance graph: one point per day over the
// user's widget timeframe, with scheduled purchases applied. Read-only.
func (s *Service) Widget(userID int64, now time.Time) (*models.WidgetData, error) {
	user, incomes, expenses, purchases, bal, err := s.loadProjectionInputs(userID)
	if err != nil {
		return nil, err
	}

	start := engine.StartOfDay(now)
	end := engine.StartOfDay(now.AddDate(0, user.WidgetTimeframeMonths, 0))

	events := s.engine.Timeline(user, incomes, expenses, purchases, now)
	proj := engine.BuildProjection(events, bal, now, start, end)

	purchaseDays := make(map[string]bool)
	for _, ev := range events {
		if ev.Kind == engine.EventPurchase {
			purchaseDays[ev.Date.Format("2006-01-02")] = true
		}
	}

	data := &models.WidgetData{LastUpdated: now}
	for i := 0; i < proj.Days(); i++ {
		date := proj.DateAt(i).Format("2006-01-02")
		data.Points = append(data.Points, models.WidgetPoint{
			Date:        date,
			Balance:     proj.Balances[i],
			HasPurchase: purchaseDays[date],
		})
	}
	return data, nil
}
