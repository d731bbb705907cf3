//go:build wireinject

package app

import "github.com/google/wire"

var scoreboardProviderSet = wire.NewSet(
	newScoreboardTelemetry,
	newScoreboardDataValkey,
	newScoreboardMessageProvider,
	newScoreboardMetrics,
	newScoreboardStore,
	newScoreboardCache,
	newScoreboardLeaderboard,
	newScoreboardEventPublisher,
	newScoreboardHub,
	newScoreboardNotifier,
	newScoreboardSignUpLocker,
	newScoreboardResolver,
	newScoreboardAuth,
	newScoreboardFormatter,
	newScoreboardSubmitter,
	newScoreboardHealthChecks,
	newScoreboardHTTPMux,
	newScoreboardHTTPServer,
	newScoreboardGRPCHealth,
	newScoreboardServerApp,
)
