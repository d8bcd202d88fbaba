package output

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/samuel262816/curry-company/internal/models"
	"github.com/samuel262816/curry-company/internal/report"
)

const kafkaBatchSize = 500

// KafkaOutput publishes every order to the order topic, keyed by order id,
// and each report to the report topic, keyed by report id.
type KafkaOutput struct {
	producer    sarama.SyncProducer
	orderTopic  string
	reportTopic string
	tracker     Tracker
}

func NewKafkaOutput(cfg *models.Config) (*KafkaOutput, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // Must be true for SyncProducer
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second

	brokerList := strings.Split(cfg.KafkaBrokerList, ",")

	producer, err := sarama.NewSyncProducer(brokerList, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	return NewKafkaOutputFromProducer(producer, cfg.KafkaOrderTopic, cfg.KafkaReportTopic), nil
}

func NewKafkaOutputFromProducer(producer sarama.SyncProducer, orderTopic, reportTopic string) *KafkaOutput {
	return &KafkaOutput{
		producer:    producer,
		orderTopic:  orderTopic,
		reportTopic: reportTopic,
		tracker:     noopTracker{},
	}
}

func (k *KafkaOutput) WriteOrders(ctx context.Context, t models.Table) error {
	if k.producer == nil {
		return fmt.Errorf("kafka producer is closed")
	}

	rows := t.Rows()
	for start := 0; start < len(rows); start += kafkaBatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+kafkaBatchSize, len(rows))
		msgs := make([]*sarama.ProducerMessage, 0, end-start)
		for _, o := range rows[start:end] {
			value, err := json.Marshal(o)
			if err != nil {
				return err
			}
			msgs = append(msgs, &sarama.ProducerMessage{
				Topic: k.orderTopic,
				Key:   sarama.StringEncoder(o.ID),
				Value: sarama.ByteEncoder(value),
			})
		}

		if err := k.producer.SendMessages(msgs); err != nil {
			return fmt.Errorf("failed to send orders to topic %s: %w", k.orderTopic, err)
		}
		if err := k.tracker.Add(len(msgs)); err != nil {
			return err
		}
	}
	return nil
}

func (k *KafkaOutput) WriteReport(_ context.Context, r *report.Report) error {
	if k.producer == nil {
		return fmt.Errorf("kafka producer is closed")
	}

	value, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.reportTopic,
		Key:   sarama.StringEncoder(r.ID),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return fmt.Errorf("failed to send report to topic %s: %w", k.reportTopic, err)
	}
	return nil
}

func (k *KafkaOutput) Close() error {
	if k.producer == nil {
		return nil
	}
	err := k.producer.Close()
	k.producer = nil
	return err
}
