// Package core provides the dataset logic behind the case dashboard.
//
// This package contains all domain logic independent of any UI or transport
// layer. Handlers load one [Dataset] snapshot per request and derive every view
// (summary cards, charts, filtered tables, CSV export) from that snapshot.
//
// # Components
//
//   - Loader: parses a CSV source into an immutable [Dataset], validating that
//     the required columns (region, year, case_type, status) are present.
//   - Resolver: maps a session's upload marker to a dataset path, falling back
//     to the bundled sample dataset.
//   - Summarize: totals, open/closed counts, distinct regions and a year trend
//     whose open/closed series are aligned to the total series.
//   - Filter / Query / Options: case-insensitive filters, fixed-size pages and
//     dropdown metadata computed over the unfiltered dataset.
//   - Export: the filtered dataset as CSV, row-for-row identical to paging
//     through Query.
//   - BuildCharts / Hotspots: numeric series for the rendering sink.
//   - UploadStore: extension checks, filename sanitising and storage of
//     uploaded CSV files.
//
// # Error Handling
//
// Load and query failures are reported as [*NotFoundError], [*SchemaError] or
// [*InvalidParameterError]. Technical errors are mapped to user-friendly
// messages using [MapError]. Each category has a code for support reference:
//
//   - DATA001-DATA002: Missing dataset or page
//   - VAL001-VAL004: Validation errors (columns, year values, parameters)
//   - FILE001-FILE005: File errors (size, type, name, format)
//   - UPL001-UPL003: Upload errors (busy, cancelled, timeout)
//   - AUTH001-AUTH004: Login, API key and role errors
//   - RATE001: Rate limiting
package core
