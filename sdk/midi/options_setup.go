package midi

import (
	"github.com/leandrodaf/homados/internal/audio"
	"github.com/leandrodaf/homados/internal/logger"
	"github.com/leandrodaf/homados/internal/playback"
	"github.com/leandrodaf/homados/internal/synth"
	"github.com/leandrodaf/homados/sdk/contracts"
)

// DefaultEventBuffer is the capacity of the note event channel.
const DefaultEventBuffer = 256

// applyDefaultOptions sets default values for ClientOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify ClientOptions.
//
// Returns:
//   - contracts.ClientOptions: A structure containing the finalized client options with defaults applied.
//   - error: An error if there was an issue applying the options.
func applyDefaultOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.BackendConfig == nil {
		options.BackendConfig = &contracts.BackendConfig{}
	}
	if options.BackendConfig.ClientName == "" {
		options.BackendConfig.ClientName = "homados"
	}

	audioConfig := contracts.AudioConfig{}
	if options.AudioConfig != nil {
		audioConfig = *options.AudioConfig
	}
	if audioConfig.SampleRate <= 0 {
		audioConfig.SampleRate = int(synth.DefaultSampleRate)
	}
	if audioConfig.BufferSize <= 0 {
		audioConfig.BufferSize = audio.DefaultBufferSize
	}
	if audioConfig.PreviewDuration <= 0 {
		audioConfig.PreviewDuration = playback.DefaultPreviewDuration
	}
	if audioConfig.PreviewDamping <= 0 {
		audioConfig.PreviewDamping = playback.DefaultPreviewDamping
	}
	if audioConfig.PollInterval <= 0 {
		audioConfig.PollInterval = playback.DefaultPollInterval
	}
	options.AudioConfig = &audioConfig

	if options.EventBuffer <= 0 {
		options.EventBuffer = DefaultEventBuffer
	}

	options.Logger.SetLevel(options.LogLevel)
	if options.LogFilePath != "" {
		options.Logger.SetDestination(contracts.FileLog, options.LogFilePath)
	}
	return *options, nil
}
