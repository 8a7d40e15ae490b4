// Package exporter turns analysis results into downloadable files.
//
// This package contains two main components:
//
// ReportWriter: Builds a multi-sheet Excel workbook from an analysis
// result, one sheet per analysis section plus a detail sheet with the
// aggregated entities.
//
// CSVWriter: Core CSV writing functionality with support for headers
// and a UTF-8 BOM for Excel compatibility, plus an entity-table export.
//
// Example usage:
//
//	writer := exporter.NewReportWriter(logger)
//	err := writer.Write("report.xlsx", result)
//
//	csvWriter := exporter.NewCSVWriter()
//	err = csvWriter.WriteEntities("entities.csv", result)
package exporter
