// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

/*
Package supervisor runs FocusGuard's long-lived services under a suture v4
tree.

Services are grouped in three child supervisors so a failure in one layer is
restarted without disturbing the others:

	focusguard
	├── data-layer
	│   ├── event-queue          recorder delivery with retries and WAL replay
	│   └── wal-gc               Badger value-log GC (when the WAL is enabled)
	├── messaging-layer
	│   ├── websocket-hub
	│   ├── anomaly-fanout       detector events to the event bus
	│   ├── bus-consumer-*       websocket bridge, webhook notifier
	│   └── monitor-manager      per-session frame drivers
	└── api-layer
	    └── http-server

Supervisor events (start, failure, backoff) are logged through sutureslog
into the zerolog pipeline.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(),
	    supervisor.TreeConfigFrom(cfg.Server))
	tree.AddDataService(queue)
	tree.AddMessagingService(hub)
	tree.AddAPIService(services.NewHTTPServerService(srv, srv.Addr, cfg.Server.ShutdownTimeout))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    // ...
	}
*/
package supervisor
