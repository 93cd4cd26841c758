package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func GuildID(guildID string) zapcore.Field {
	return zap.String("guild_id", guildID)
}

func ChannelID(channelID string) zapcore.Field {
	return zap.String("channel_id", channelID)
}

func CommandName(name string) zapcore.Field {
	return zap.String("command", name)
}

func CustomID(customID string) zapcore.Field {
	return zap.String("custom_id", customID)
}

func ApplicationID(appID string) zapcore.Field {
	return zap.String("application_id", appID)
}

func NewLogger(env string) *zap.Logger {
	if strings.ToUpper(env) == "PROD" {
		return zap.Must(zap.NewProduction(zap.WithCaller(true)))
	}

	return zap.Must(zap.NewDevelopment())
}
