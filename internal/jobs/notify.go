package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/budgieapp/budgie-server/internal/engine"
	"github.com/budgieapp/budgie-server/internal/repository"
	"github.com/budgieapp/budgie-server/internal/utils/email"
)

// Notifier emails users about purchases their plan scheduled for today.
type Notifier struct {
	repo   *repository.Repository
	log    *logrus.Logger
	sender *email.Sender
}

// NewNotifier creates the reminder job
func NewNotifier(repo *repository.Repository, log *logrus.Logger, sender *email.Sender) *Notifier {
	return &Notifier{repo: repo, log: log, sender: sender}
}

// Run sends a reminder for every pending purchase planned for today
func (n *Notifier) Run(now time.Time) {
	today := engine.StartOfDay(now)
	reminders, err := n.repo.ListPurchasesPlannedOn(today)
	if err != nil {
		n.log.Errorf("Reminders: failed to list due purchases: %v", err)
		return
	}

	for _, rem := range reminders {
		p := rem.Purchase
		if err := n.sender.SendPurchaseReminder(rem.Email, rem.Username, p.Name, p.Price, *p.PlannedDate); err != nil {
			n.log.Warnf("Failed to send reminder for purchase %s: %v", p.ID, err)
			continue
		}
	}
	n.log.Infof("Sent %d purchase reminders", len(reminders))
}

// Start registers the periodic jobs and starts the scheduler: reconciliation
// every hour, reminders daily at 08:00.
func Start(reconciler *Reconciler, notifier *Notifier, log *logrus.Logger) *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc("@hourly", func() { reconciler.Run(time.Now()) }); err != nil {
		log.Fatalf("Failed to schedule reconciliation job: %v", err)
	}
	if _, err := c.AddFunc("0 8 * * *", func() { notifier.Run(time.Now()) }); err != nil {
		log.Fatalf("Failed to schedule reminder job: %v", err)
	}

	c.Start()
	log.Info("Background jobs started")
	return c
}
