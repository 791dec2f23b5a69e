// Package charts renders the report PNG charts with gonum/plot: salary and
// age histograms, a gender pie and a horizontal bar chart of the mean salary
// per department. Each chart is drawn only when its source columns exist.
package charts
