package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-tracker/internal/config"
	"github.com/smokyabdulrahman/prayer-tracker/internal/notify"
)

// buildDispatcher assembles the configured notification sinks. A sink that
// cannot be set up is skipped with a warning; the console is used when none
// remain. The returned func releases sink connections.
func buildDispatcher(cfg *config.Config, secrets config.Secrets, out io.Writer, log zerolog.Logger) (notify.Dispatcher, func()) {
	var (
		sinks   notify.Multi
		closers []func()
	)

	for _, name := range cfg.NotifierList() {
		switch name {
		case notify.SinkConsole:
			sinks = append(sinks, notify.NewConsole(out))
		case notify.SinkTwilio:
			t, err := notify.NewTwilio(secrets.TwilioAccountSID, secrets.TwilioAuthToken, secrets.TwilioFrom, cfg.TwilioTo)
			if err != nil {
				log.Warn().Err(err).Msg("twilio notifier disabled")
				continue
			}
			sinks = append(sinks, t)
		case notify.SinkMQTT:
			clientID := fmt.Sprintf("prayer-tracker-%d", os.Getpid())
			m, err := notify.NewMQTT(cfg.MQTTBroker, clientID, cfg.MQTTTopic)
			if err != nil {
				log.Warn().Err(err).Msg("mqtt notifier disabled")
				continue
			}
			sinks = append(sinks, m)
			closers = append(closers, m.Close)
		default:
			log.Warn().Str("notifier", name).Msg("unknown notifier ignored")
		}
	}

	if len(sinks) == 0 {
		sinks = append(sinks, notify.NewConsole(out))
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	if len(sinks) == 1 {
		return sinks[0], closeAll
	}
	return sinks, closeAll
}
