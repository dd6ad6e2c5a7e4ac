package queue

import (
	"errors"
	"fmt"
	"sync"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/logger"
	"github.com/streadway/amqp"
)

var ErrClosed = errors.New("amqp connection closed")

// Manager maintains a single AMQP connection and declares topology.
type Manager struct {
	url    string
	conn   *amqp.Connection
	logger *logger.Logger
	mu     sync.RWMutex
}

func NewManager(url string, log *logger.Logger) (*Manager, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	return &Manager{
		url:    url,
		conn:   conn,
		logger: log,
	}, nil
}

func (m *Manager) Channel() (*amqp.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.conn == nil || m.conn.IsClosed() {
		return nil, ErrClosed
	}
	return m.conn.Channel()
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return nil
	}
	err := m.conn.Close()
	m.conn = nil
	return err
}

// Topology is a direct exchange with queues bound by routing key. Rejected
// messages are dead-lettered to DeadLetter through the default exchange.
type Topology struct {
	Exchange   string
	Bindings   map[string]string // queue -> routing key
	DeadLetter string
}

func (m *Manager) DeclareTopology(topology Topology) error {
	ch, err := m.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(topology.Exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if topology.DeadLetter != "" {
		if _, err := ch.QueueDeclare(topology.DeadLetter, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare dlq: %w", err)
		}
	}

	for queue, key := range topology.Bindings {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, deadLetterArgs(topology.DeadLetter)); err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}

		if err := ch.QueueBind(queue, key, topology.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", queue, err)
		}
	}

	m.logger.WithFields(map[string]interface{}{
		"exchange":    topology.Exchange,
		"dead_letter": topology.DeadLetter,
	}).Info("AMQP topology declared")

	return nil
}

func deadLetterArgs(dlq string) amqp.Table {
	args := amqp.Table{}
	if dlq != "" {
		args["x-dead-letter-exchange"] = ""
		args["x-dead-letter-routing-key"] = dlq
	}
	return args
}
