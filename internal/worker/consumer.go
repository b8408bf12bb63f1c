package worker

import (
	"context"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/juva99/yoop-sub001/internal/events"
	"github.com/juva99/yoop-sub001/internal/notifier"
)

type Config struct {
	RabbitURL   string
	Exchange    string
	Queue       string
	Bindings    []string
	Prefetch    int
	UseDLX      bool
	DLXName     string
	DLXQueue    string
	ServiceName string
}

// Consumer drains committed-transition events and turns them into
// notifications. A failed handler Nacks with requeue; a poison message
// eventually lands on the DLQ.
type Consumer struct {
	cfg      Config
	notifier notifier.Notifier

	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewConsumer(cfg Config, n notifier.Notifier) *Consumer {
	return &Consumer{cfg: cfg, notifier: n}
}

func (c *Consumer) Connect() error {
	conn, err := amqp.Dial(c.cfg.RabbitURL)
	if err != nil {
		return fmt.Errorf("rabbit dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel failed: %w", err)
	}

	args := amqp.Table{}
	if c.cfg.UseDLX {
		args["x-dead-letter-exchange"] = c.cfg.DLXName
	}
	q, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, args)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare queue failed: %w", err)
	}

	if err := ch.ExchangeDeclare(c.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange failed: %w", err)
	}
	for _, key := range c.cfg.Bindings {
		if err := ch.QueueBind(q.Name, key, c.cfg.Exchange, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("bind queue key=%s failed: %w", key, err)
		}
	}

	if c.cfg.UseDLX {
		if err := ch.ExchangeDeclare(c.cfg.DLXName, "topic", true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("declare dlx failed: %w", err)
		}
		if _, err := ch.QueueDeclare(c.cfg.DLXQueue, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("declare dlq failed: %w", err)
		}
		if err := ch.QueueBind(c.cfg.DLXQueue, "#", c.cfg.DLXName, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("bind dlq failed: %w", err)
		}
	}

	if c.cfg.Prefetch <= 0 {
		c.cfg.Prefetch = 8
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("set qos failed: %w", err)
	}

	c.conn = conn
	c.ch = ch
	return nil
}

func (c *Consumer) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.ch.ConsumeWithContext(ctx, c.cfg.Queue, c.cfg.ServiceName, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume failed: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := c.HandleDelivery(d); err != nil {
				log.Printf("[notify] handle error key=%s err=%v -> Nack&requeue", d.RoutingKey, err)
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) HandleDelivery(d amqp.Delivery) error {
	switch d.RoutingKey {
	case events.RKGameCreated:
		ev, err := events.MustUnmarshal[events.GameCreated](d.Body)
		if err != nil {
			return err
		}
		return c.notifier.Notify("Game created",
			fmt.Sprintf("Game %s on field %s, %s. Awaiting field manager approval.",
				ev.GameID, ev.FieldID, notifier.HumanTimeRange(ev.Start, ev.End)))

	case events.RKGameApproved:
		ev, err := events.MustUnmarshal[events.GameSimple](d.Body)
		if err != nil {
			return err
		}
		return c.notifier.Notify("Game approved", fmt.Sprintf("Game %s is on.", ev.GameID))

	case events.RKGameRejected:
		ev, err := events.MustUnmarshal[events.GameSimple](d.Body)
		if err != nil {
			return err
		}
		return c.notifier.Notify("Game rejected", fmt.Sprintf("Game %s was rejected by the field manager.", ev.GameID))

	case events.RKGameCancelled:
		ev, err := events.MustUnmarshal[events.GameSimple](d.Body)
		if err != nil {
			return err
		}
		return c.notifier.Notify("Game cancelled", fmt.Sprintf("Game %s was cancelled.", ev.GameID))

	case events.RKGameRescheduled:
		ev, err := events.MustUnmarshal[events.GameSimple](d.Body)
		if err != nil {
			return err
		}
		return c.notifier.Notify("Game rescheduled", fmt.Sprintf("Game %s moved to a new time.", ev.GameID))

	case events.RKGameJoined:
		ev, err := events.MustUnmarshal[events.RosterChange](d.Body)
		if err != nil {
			return err
		}
		return c.notifier.Notify("Joined game", fmt.Sprintf("User %s is in game %s.", ev.UserID, ev.GameID))

	case events.RKGameWaitlisted:
		ev, err := events.MustUnmarshal[events.RosterChange](d.Body)
		if err != nil {
			return err
		}
		return c.notifier.Notify("Waitlisted", fmt.Sprintf("Game %s is full; user %s is next in line.", ev.GameID, ev.UserID))

	case events.RKGameLeft:
		ev, err := events.MustUnmarshal[events.RosterChange](d.Body)
		if err != nil {
			return err
		}
		return c.notifier.Notify("Left game", fmt.Sprintf("User %s left game %s.", ev.UserID, ev.GameID))

	case events.RKGameRemoved:
		ev, err := events.MustUnmarshal[events.RosterChange](d.Body)
		if err != nil {
			return err
		}
		return c.notifier.Notify("Removed from game", fmt.Sprintf("User %s was removed from game %s.", ev.UserID, ev.GameID))

	case events.RKGamePromoted:
		ev, err := events.MustUnmarshal[events.RosterChange](d.Body)
		if err != nil {
			return err
		}
		return c.notifier.Notify("Off the waitlist", fmt.Sprintf("User %s got a spot in game %s.", ev.UserID, ev.GameID))

	case events.RKGameTransferred:
		ev, err := events.MustUnmarshal[events.CreatorTransferred](d.Body)
		if err != nil {
			return err
		}
		return c.notifier.Notify("New game owner", fmt.Sprintf("Game %s is now run by %s.", ev.GameID, ev.NewCreatorID))

	case events.RKFriendRequested:
		ev, err := events.MustUnmarshal[events.FriendRequested](d.Body)
		if err != nil {
			return err
		}
		return c.notifier.Notify("Friend request", fmt.Sprintf("User %s wants to be friends with %s.", ev.RequesterID, ev.RecipientID))

	case events.RKFriendResponded:
		ev, err := events.MustUnmarshal[events.FriendResponded](d.Body)
		if err != nil {
			return err
		}
		return c.notifier.Notify("Friend request answered", fmt.Sprintf("Request %s: %s.", ev.RelationID, ev.Decision))

	default:
		log.Printf("[notify] skip unknown key=%s", d.RoutingKey)
	}
	return nil
}
