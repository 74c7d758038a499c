// Package queue also contains the background consumer that drains the
// flight.reminder queue and dispatches email to assigned pilots.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/adamwrona/airport-ops/internal/logger"
	"github.com/adamwrona/airport-ops/internal/mailer"
)

const reminderQueueName = "flight.reminder"

// StartReminderConsumer connects to RabbitMQ, declares the durable
// flight.reminder queue and consumes it forever.  Each event becomes
// one email to the flight's assigned pilots.  The function runs a
// reconnect loop with capped exponential backoff and keeps running
// through processing errors, nacking the offending message.
func StartReminderConsumer(brokerURL string, m *mailer.Mailer, log logger.Logger) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL)
		if err != nil {
			log.Warn("reminder consumer dial failed", "error", err, "retry_in", backoff.String())
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeReminders(conn, m, log); err != nil {
			log.Warn("reminder consume loop ended", "error", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeReminders(conn *amqp.Connection, m *mailer.Mailer, log logger.Logger) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("reminder consumer set QoS failed", "error", err)
	}

	if _, err := ch.QueueDeclare(reminderQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(reminderQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for d := range msgs {
		if err := handleReminder(d.Body, m, log); err != nil {
			log.Error("reminder handling failed", "error", err)
			_ = d.Nack(false, false) // drop, do not requeue a poison message
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("delivery channel closed")
}

func handleReminder(body []byte, m *mailer.Mailer, log logger.Logger) error {
	var ev FlightReminderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	subject := fmt.Sprintf("Flight reminder: %s -> %s departs %s",
		ev.TakeoffAirport, ev.LandingAirport, ev.DepartureAt)
	text := fmt.Sprintf(
		"You are assigned to flight %d (%s) from %s to %s, departing %s.\n",
		ev.FlightID, ev.Aircraft, ev.TakeoffAirport, ev.LandingAirport, ev.DepartureAt)
	if err := m.Send(ev.PilotEmails, subject, text); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	log.Info("reminder dispatched",
		"flight_id", ev.FlightID, "recipients", len(ev.PilotEmails), "mail_enabled", m.Enabled())
	return nil
}
