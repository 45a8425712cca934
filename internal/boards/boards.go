// Package boards pushes published timetables to mosque display boards over
// MQTT. Boards subscribe to their mosque's topic; messages are retained so
// a board powered on mid-day still receives the current timetable.
package boards

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/minaret-io/minaret/internal/db"
	"github.com/minaret-io/minaret/internal/model"
)

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Error().Err(err).Msg("MQTT connection lost")
}

type Publisher struct {
	client mqtt.Client
}

func NewPublisher(brokerURL, clientID string) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &Publisher{client: client}, nil
}

// PublishDay sends one mosque's timetable to its board topic, retained at
// QoS 1.
func (p *Publisher) PublishDay(pd model.PrayerDay) error {
	payload, err := json.Marshal(pd)
	if err != nil {
		return fmt.Errorf("marshal timetable: %w", err)
	}

	topic := fmt.Sprintf("boards/%d/timetable", pd.MosqueID)
	token := p.client.Publish(topic, 1, true, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", topic, token.Error())
	}
	return nil
}

// PublishAll sends today's timetable for every mosque. Runs alongside the
// nightly sweep; a mosque with nothing published today is skipped.
func (p *Publisher) PublishAll(store db.Store, loc *time.Location) {
	day := time.Now().In(loc).Format("2006-01-02")

	mosques, err := store.ListMosques()
	if err != nil {
		log.Error().Err(err).Msg("failed to list mosques for board publish")
		return
	}

	published := 0
	for _, m := range mosques {
		pd, err := store.GetPrayerDay(m.ID, day)
		if err != nil {
			log.Error().Err(err).Int("mosque_id", m.ID).Msg("failed to load prayer day for board")
			continue
		}
		if len(pd.Prayers) == 0 {
			continue
		}
		if err := p.PublishDay(pd); err != nil {
			log.Error().Err(err).Int("mosque_id", m.ID).Msg("failed to publish timetable to board")
			continue
		}
		published++
	}
	log.Info().Int("published", published).Str("day", day).Msg("board timetables published")
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
