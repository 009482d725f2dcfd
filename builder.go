package bestbot

import (
	"github.com/alexandre-normand/bestbot/config"
	"github.com/spf13/viper"
)

// Builder holds a bestbot instance to build
type Builder struct {
	bot *Bot
	err error
}

// NewBot returns a new Builder used to set up a new bestbot
func NewBot(name string, v *viper.Viper, options ...Option) (b *Builder) {
	b = new(Builder)
	b.bot, b.err = New(name, v, options...)

	return b
}

// WithPlugin adds a plugin to the bestbot instance
func (b *Builder) WithPlugin(p *Plugin) *Builder {
	if b.err != nil {
		return b
	}

	b.bot.RegisterPlugin(p)

	return b
}

// WithPluginErr adds a plugin that has a creation function returning (Plugin, error) to the bestbot instance
func (b *Builder) WithPluginErr(p *Plugin, err error) *Builder {
	if b.err == nil && err != nil {
		b.err = err
	}

	if b.err != nil {
		return b
	}

	return b.WithPlugin(p)
}

// WithConfigurablePluginErr adds a plugin created from its configuration sub-tree (plugins.<name>). A plugin without
// configuration gets an empty one and creation errors fail the build
func (b *Builder) WithConfigurablePluginErr(name string, newPlugin func(c *config.PluginConfig) (p *Plugin, err error)) *Builder {
	if b.err != nil {
		return b
	}

	return b.WithPluginErr(newPlugin(config.GetPluginConfigOrEmpty(b.bot.config, name)))
}

// Build returns the built bestbot instance. If there was an error during
// setup, the error is returned along with a nil bestbot
func (b *Builder) Build() (bot *Bot, err error) {
	if b.err != nil {
		return nil, b.err
	}

	return b.bot, nil
}
