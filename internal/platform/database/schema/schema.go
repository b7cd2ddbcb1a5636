// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns created by the SQL migrations.
package schema

import "strings"

// List joins column names for a SELECT or RETURNING clause.
func List(columns []string) string {
	return strings.Join(columns, ", ")
}
