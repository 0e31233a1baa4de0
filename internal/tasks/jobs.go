package tasks

import (
	"context" // Job context
	"errors"  // Error inspection
	"fmt"     // Message formatting

	"hunter_api/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// HandlerFunc runs one job
type HandlerFunc func(ctx context.Context, args []uint) error

// ErrBadArgs means a job was enqueued with the wrong number of ids
var ErrBadArgs = errors.New("unexpected job arguments")

// Notifier composes and sends the notification emails
type Notifier struct {
	db     *gorm.DB // Source of the mailed entities
	mailer Mailer   // Outgoing mail
	retry  Enqueuer // Per-recipient retries, may be nil
}

// NewNotifier builds the email job handlers. retry receives one job per
// recipient whose raid notification failed; with a nil retry those mails are only logged.
func NewNotifier(db *gorm.DB, mailer Mailer, retry Enqueuer) *Notifier {
	return &Notifier{db: db, mailer: mailer, retry: retry}
}

// Handlers maps job names to their handler
func (n *Notifier) Handlers() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		JobHunterWelcome:    n.HunterWelcome,
		JobGuildCreation:    n.GuildCreation,
		JobGuildInvite:      n.GuildInvite,
		JobRaidNotification: n.RaidNotification,
		JobRaidInvite:       n.RaidInvite,

		JobRaidParticipantNotification: n.RaidParticipantNotification,
	}
}

// HunterWelcome greets a newly created hunter. args: hunter id
func (n *Notifier) HunterWelcome(ctx context.Context, args []uint) error {
	if len(args) != 1 {
		return ErrBadArgs
	}
	var hunter domain.Hunter
	if err := n.db.WithContext(ctx).First(&hunter, args[0]).Error; err != nil {
		return gone(err, "hunter", args[0])
	}
	return n.send(ctx, hunter, "Welcome to the Hunter Network", fmt.Sprintf(
		"Hi %s,\n\nWelcome to the Hunter Network! Start exploring dungeons, joining raids, and leveling up your skills.",
		hunter.FirstName))
}

// GuildCreation tells the leader their guild exists. args: guild id
func (n *Notifier) GuildCreation(ctx context.Context, args []uint) error {
	if len(args) != 1 {
		return ErrBadArgs
	}
	var guild domain.Guild
	if err := n.db.WithContext(ctx).Preload("Leader").First(&guild, args[0]).Error; err != nil {
		return gone(err, "guild", args[0])
	}
	if guild.Leader == nil {
		logrus.WithField("guild_id", guild.ID).Info("Guild has no leader, skipping creation email")
		return nil
	}
	return n.send(ctx, *guild.Leader, "Guild Created: "+guild.Name, fmt.Sprintf(
		"Hi %s,\n\nYour guild \"%s\" has been created.", guild.Leader.FirstName, guild.Name))
}

// GuildInvite invites a hunter into a guild. args: hunter id, guild id
func (n *Notifier) GuildInvite(ctx context.Context, args []uint) error {
	if len(args) != 2 {
		return ErrBadArgs
	}
	var hunter domain.Hunter
	if err := n.db.WithContext(ctx).First(&hunter, args[0]).Error; err != nil {
		return gone(err, "hunter", args[0])
	}
	var guild domain.Guild
	if err := n.db.WithContext(ctx).First(&guild, args[1]).Error; err != nil {
		return gone(err, "guild", args[1])
	}
	return n.send(ctx, hunter, "You are invited to join the guild "+guild.Name, fmt.Sprintf(
		"Hi %s,\n\nYou have been invited to join the guild \"%s\".", hunter.FirstName, guild.Name))
}

// RaidNotification mails every participant of a raid. args: raid id.
// The job fails as a whole only when no participant could be mailed; otherwise
// each failed recipient gets its own retry job so nobody is mailed twice.
func (n *Notifier) RaidNotification(ctx context.Context, args []uint) error {
	if len(args) != 1 {
		return ErrBadArgs
	}
	var raid domain.Raid
	if err := n.db.WithContext(ctx).Preload("Participations.Hunter").First(&raid, args[0]).Error; err != nil {
		return gone(err, "raid", args[0])
	}
	var (
		sent   int
		failed []domain.Hunter
		errs   []error
	)
	for _, p := range raid.Participations {
		if p.Hunter == nil {
			continue // Hunter deleted
		}
		if err := n.raidNotice(ctx, raid, *p.Hunter); err != nil {
			failed = append(failed, *p.Hunter)
			errs = append(errs, err)
			continue
		}
		sent++
	}
	entry := logrus.WithFields(logrus.Fields{
		"raid_id": raid.ID,     // Raid mailed
		"sent":    sent,        // Delivered mails
		"failed":  len(failed), // Undelivered mails
	})
	if len(failed) == 0 {
		entry.Info("Raid notifications sent")
		return nil
	}
	if sent == 0 {
		return errors.Join(errs...) // Nothing delivered, retry the whole job
	}
	entry.Warn("Some raid notifications failed")
	for i, h := range failed {
		if n.retry == nil {
			logrus.WithFields(logrus.Fields{
				"raid_id":   raid.ID,         // Raid mailed
				"hunter_id": h.ID,            // Recipient
				"error":     errs[i].Error(), // Send error
			}).Error("Raid notification not delivered")
			continue
		}
		if _, err := n.retry.Enqueue(ctx, JobRaidParticipantNotification, raid.ID, h.ID); err != nil {
			logrus.WithFields(logrus.Fields{
				"raid_id":   raid.ID,     // Raid mailed
				"hunter_id": h.ID,        // Recipient
				"error":     err.Error(), // Queue error
			}).Error("Could not queue raid notification retry")
		}
	}
	return nil
}

// RaidParticipantNotification retries the raid mail for a single participant. args: raid id, hunter id
func (n *Notifier) RaidParticipantNotification(ctx context.Context, args []uint) error {
	if len(args) != 2 {
		return ErrBadArgs
	}
	var raid domain.Raid
	if err := n.db.WithContext(ctx).First(&raid, args[0]).Error; err != nil {
		return gone(err, "raid", args[0])
	}
	var p domain.RaidParticipation
	err := n.db.WithContext(ctx).Preload("Hunter").
		Where("raid_id = ? AND hunter_id = ?", args[0], args[1]).
		First(&p).Error
	if err != nil {
		return gone(err, "participation", args[1]) // Left the raid since
	}
	if p.Hunter == nil {
		return nil
	}
	return n.raidNotice(ctx, raid, *p.Hunter)
}

func (n *Notifier) raidNotice(ctx context.Context, raid domain.Raid, to domain.Hunter) error {
	return n.send(ctx, to, "Raid Notification: "+raid.Name, fmt.Sprintf(
		"Hi %s,\n\nYou are participating in the raid \"%s\" on %s. Be prepared!",
		to.FirstName, raid.Name, raid.Date.Format("2006-01-02")))
}

// RaidInvite invites a hunter to an upcoming raid. args: raid id, hunter id
func (n *Notifier) RaidInvite(ctx context.Context, args []uint) error {
	if len(args) != 2 {
		return ErrBadArgs
	}
	var raid domain.Raid
	if err := n.db.WithContext(ctx).Preload("Dungeon").First(&raid, args[0]).Error; err != nil {
		return gone(err, "raid", args[0])
	}
	var hunter domain.Hunter
	if err := n.db.WithContext(ctx).First(&hunter, args[1]).Error; err != nil {
		return gone(err, "hunter", args[1])
	}
	return n.send(ctx, hunter, "Raid Invitation: "+raid.Name, fmt.Sprintf(
		"Hi %s,\n\nYou have been invited to the raid \"%s\" in %s on %s.",
		hunter.FirstName, raid.Name, raid.Dungeon.Name, raid.Date.Format("2006-01-02")))
}

func (n *Notifier) send(ctx context.Context, to domain.Hunter, subject, body string) error {
	if to.Email == "" {
		logrus.WithField("hunter_id", to.ID).Info("Hunter has no email, skipping")
		return nil
	}
	return n.mailer.Send(ctx, Message{To: to.Email, Subject: subject, Body: body})
}

// gone drops jobs whose entity was deleted before the worker got to them
func gone(err error, kind string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithFields(logrus.Fields{"kind": kind, "id": id}).Info("Job target no longer exists")
		return nil
	}
	return err
}
