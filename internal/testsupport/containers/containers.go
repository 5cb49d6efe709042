//go:build integration

// Package containers starts throwaway RabbitMQ and MySQL instances for
// integration tests. Containers are terminated through t.Cleanup.
package containers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	rabbitImage = "rabbitmq:3.12-alpine"
	amqpPort    = nat.Port("5672/tcp")
	mysqlPort   = nat.Port("3306/tcp")
)

// RabbitMQ returns the AMQP URL of a fresh broker.
func RabbitMQ(t testing.TB, ctx context.Context) string {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        rabbitImage,
			ExposedPorts: []string{string(amqpPort)},
			WaitingFor:   wait.ForListeningPort(amqpPort).WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, amqpPort)
	require.NoError(t, err)

	return fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
}

// MySQL returns a DSN for a fresh database with schemaFile applied.
func MySQL(t testing.TB, ctx context.Context, schemaFile string) string {
	t.Helper()
	const (
		dbName = "notistore_test"
		user   = "testuser"
		pass   = "testpass"
	)

	container, err := mysql.RunContainer(
		ctx,
		mysql.WithDatabase(dbName),
		mysql.WithUsername(user),
		mysql.WithPassword(pass),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, mysqlPort)
	require.NoError(t, err)

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC&multiStatements=true", user, pass, host, port.Port(), dbName)

	schema, err := os.ReadFile(schemaFile)
	require.NoError(t, err)

	dbConn, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	defer dbConn.Close()
	_, err = dbConn.ExecContext(ctx, string(schema))
	require.NoError(t, err)

	return dsn
}

// WaitForAMQPConsumer polls the queue until at least one consumer is attached.
func WaitForAMQPConsumer(ctx context.Context, amqpURL, queue string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("no consumer on %s: %w", queue, ctx.Err())
		case <-ticker.C:
			if n, err := queueConsumers(amqpURL, queue); err == nil && n > 0 {
				return nil
			}
		}
	}
}

func queueConsumers(amqpURL, queue string) (int, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		return 0, err
	}
	defer ch.Close()
	q, err := ch.QueueInspect(queue)
	if err != nil {
		return 0, err
	}
	return q.Consumers, nil
}
