// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package importer turns operator input into (platform, order) records for
pool.Import.

Text input is one pair per line:

	抖音,D2023001
	天猫,T2023002

Files are CSV or XLSX with a header row containing 平台 and 主订单编号;
other columns are ignored. Validation of individual records (empty
platform or order) is left to pool.Import, which counts them.
*/
package importer
