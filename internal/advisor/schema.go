package advisor

// tradesSchemaDescription describes the ClickHouse schema used for NL→SQL prompting.
//
// Keeping it in sync with the actual ClickHouse table definition in init.sql.
const tradesSchemaDescription = `
Database: arb
Table: trades

Columns:
  - unit_id       String    -- Unique id of the executed arbitrage unit
  - timestamp     DateTime  -- Wall-clock time the unit finished (UTC)
  - path          String    -- Venue route, e.g. "amm-sol-usdc>desk-usdc-sol"
  - home_account  String    -- Base58 address of the home asset account
  - amount_in     UInt64    -- Initial input amount in base units
  - init_balance  UInt64    -- Home balance before the unit ran
  - final_balance UInt64    -- Home balance after the unit ran
  - profit        UInt64    -- final_balance - init_balance for committed units, 0 otherwise
  - hop_count     UInt8     -- Number of swap hops in the unit
  - committed     Bool      -- true if the unit committed, false if it aborted
  - error_kind    String    -- Abort reason: "backend_execution_failed", "non_positive_output", "unprofitable", or "" when committed
  - duration_ms   Int64     -- Wall-clock execution time in milliseconds

Notes:
  - Committed units always have profit > 0; aborted units roll back and keep profit 0.
  - Win rate over a period is countIf(committed) / count().
  - Time filters should use timestamp, e.g. timestamp >= now() - INTERVAL 24 HOUR.
`
