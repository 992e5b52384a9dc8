// Fleetwatch - Gaming Device Fleet Telemetry Ingestion
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fleetwatch

/*
Package publish implements the post-commit sinks of a sync cycle.

Alert sinks (one is active, chosen by alerts.driver):

  - AlertSink publishes each newly raised alert through a Watermill
    publisher. NewNATSAlertSink backs it with core NATS; the subject is
    "<subject_prefix>.<severity>" and the Watermill message UUID is the
    event uuid.
  - AMQPAlertSink publishes the same JSON payload to a durable RabbitMQ
    queue as persistent messages, with the event uuid as message id.

Analytics sink:

  - ClickHouseSink appends every newly stored event to a MergeTree fact
    table, created on first use.

Sinks never see rolled-back cycles, and a failing sink never fails the
cycle that fed it. Set builds the configured sinks and closes them on
shutdown.
*/
package publish
