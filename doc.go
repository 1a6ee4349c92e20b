// Package lxtax reconstructs the tax consequences of a LedgerX account
// history: bitcoin deposits, spot trades via next-day swaps, and options,
// matched into lots exactly the way the exchange's own end-of-year
// filings match them, so that the output reconciles line for line.
//
// The core functionalities include:
//   - History Import: Normalizing the exchange's deposit, withdrawal,
//     trade and position payloads into a single time-ordered event stream.
//   - Lot Matching: Per-asset position queues that pair closing
//     transactions with open lots, FIFO for section 1256 contracts and
//     highest-basis-first for spot bitcoin, classifying each close as
//     short-term, long-term or 1256.
//   - Deposit Resolution: Matching deposits to on-chain transactions so
//     wallet coins keep their original basis and acquisition date, with
//     mining fees docked as partial disposals.
//   - Price References: Recovering the exchange's own settlement price
//     references from its published CSVs, so assignments are priced with
//     the exact figures the exchange filed.
//   - Report Output: The exchange-format tax CSV (and a lot-annotated
//     variant), a raw history dump, and a per-character summary.
//
// This package serves as the foundational logic for the `lxt`
// command-line tool.
package lxtax
