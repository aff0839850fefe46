// Package problem models a pizza delivery assignment problem: pizzas grouped
// into configurations by identical ingredient sets, the team quotas to serve,
// and the deliveries that make up a solution. It also provides the text
// loader for problem files and the writer/reader for solution files.
package problem
