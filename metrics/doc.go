// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package metrics registers the Prometheus collectors of the lottery service.

# HTTP

Wrap the router to count requests and observe latency:

	handler := metrics.InstrumentHandler(mux)

Requests are labelled with the matched route pattern, e.g. /orders/{order}.
The registry is served by Handler, mounted at GET /metrics.

# Domain counters

  - order_lottery_auth_unlock_attempts_total{area,result}
  - order_lottery_draw_started_total
  - order_lottery_draw_selected_total{platform}
  - order_lottery_draw_rounds_confirmed_total{saved}
  - order_lottery_ledger_records_added_total
  - order_lottery_pool_import_records_total{outcome}
*/
package metrics
