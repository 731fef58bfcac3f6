package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/photonicat/aqi_matrix_display/aqi"
)

const MQTT_PUBLISH_TIMEOUT = 5 * time.Second

// readingMessage is the retained payload published for every sample.
type readingMessage struct {
	SensorID string   `json:"sensor_id"`
	PM25     *float64 `json:"pm25"`
	AQI      *float64 `json:"aqi"`
	Display  string   `json:"display"`
	Category string   `json:"category"`
	Color    string   `json:"color"`
	Time     string   `json:"time"`
}

func newReadingMessage(sensorID string, s Sample) readingMessage {
	v := s.Value()
	msg := readingMessage{
		SensorID: sensorID,
		Display:  v.String(),
		Category: aqi.Category(v),
		Color:    aqi.Hex(aqi.Color(v)),
		Time:     formatTime(s.Timestamp),
	}
	if s.Valid {
		pm := s.PM25
		msg.PM25 = &pm
	}
	if v.Kind == aqi.Index {
		idx := v.V
		msg.AQI = &idx
	}
	return msg
}

// mqttPublisher publishes samples to one topic.
type mqttPublisher struct {
	client mqtt.Client
	topic  string
}

func newMQTTPublisher(cfg MQTTConfig) (*mqttPublisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("no MQTT broker configured")
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetKeepAlive(60 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetWill(cfg.Topic+"/status", "offline", 1, true)
	opts.OnConnect = func(c mqtt.Client) {
		log.Printf("MQTT connected to %s", cfg.Broker)
		c.Publish(cfg.Topic+"/status", 1, true, "online")
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		log.Printf("MQTT connection lost: %v", err)
	}

	client := mqtt.NewClient(opts)
	// With ConnectRetry the token only completes once connected, so do
	// not wait on it here.
	client.Connect()
	return &mqttPublisher{client: client, topic: cfg.Topic}, nil
}

// Publish sends s as a retained JSON message.
func (p *mqttPublisher) Publish(sensorID string, s Sample) error {
	payload, err := json.Marshal(newReadingMessage(sensorID, s))
	if err != nil {
		return err
	}
	token := p.client.Publish(p.topic, 1, true, payload)
	if !token.WaitTimeout(MQTT_PUBLISH_TIMEOUT) {
		return fmt.Errorf("publish to %s timed out", p.topic)
	}
	return token.Error()
}

func (p *mqttPublisher) Close() {
	p.client.Disconnect(250)
}
