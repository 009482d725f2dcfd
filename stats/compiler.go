package stats

import (
	"context"

	"github.com/pkg/errors"
)

// Report holds stats compiled over all channels
type Report struct {
	Stats    *AuthorStats
	Metadata Record

	// ChannelsScraped is the number of channels successfully scraped
	ChannelsScraped int

	// SkippedChannels are channels the bot wasn't allowed to read
	SkippedChannels []Channel
}

// Compiler compiles stats over every channel visible on a platform
type Compiler struct {
	platform Platform
	scraper  *Scraper
	logger   Logger
}

// NewCompiler returns a new Compiler using scraper to read every channel listed by platform
func NewCompiler(platform Platform, scraper *Scraper, logger Logger) (c *Compiler) {
	c = new(Compiler)
	c.platform = platform
	c.scraper = scraper
	c.logger = logger

	return c
}

// Compile scrapes every channel one at a time, in the order the platform lists them, and merges the
// per-author stats. Channels that can't be read because of permissions are skipped and contribute
// nothing. Any other error aborts the compilation. Derived fields are computed on the merged result which
// means an ErrNoMessages error is returned if no channel has any message
func (c *Compiler) Compile(ctx context.Context) (r Report, err error) {
	c.logger.Printf("Compiling stats...")

	channels, err := c.platform.Channels(ctx)
	if err != nil {
		return Report{}, errors.Wrap(err, "failed to list channels")
	}

	r = Report{Stats: NewAuthorStats(), SkippedChannels: make([]Channel, 0)}

	for _, ch := range channels {
		cs, err := c.scraper.Scrape(ctx, ch, false)
		if IsPermissionDenied(err) {
			c.logger.Printf("Skipping channel [%s] (%s), not allowed to read its history: %v", ch.Name, ch.ID, err)
			r.SkippedChannels = append(r.SkippedChannels, ch)
			continue
		}

		if err != nil {
			return Report{}, err
		}

		r.ChannelsScraped++
		r.Stats.Merge(cs.Stats)
		r.Metadata.Add(cs.Metadata)
	}

	if err = Derive(r.Stats, &r.Metadata); err != nil {
		return Report{}, err
	}

	c.logger.Printf("Done compiling stats over [%d] channels ([%d] skipped)", r.ChannelsScraped, len(r.SkippedChannels))

	return r, nil
}
