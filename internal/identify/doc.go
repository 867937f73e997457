// Package identify estimates FOPDT models from reaction curves.
//
// Two-point methods read the times at which the normalized response
// crosses two fixed fractions of its total change and map them to a time
// constant and dead time:
//
//	Smith                    28.3% / 63.2%   tau = 1.5 (t2 - t1)    theta = t2 - tau
//	Sundaresan-Krishnaswamy  35.3% / 85.3%   tau = 0.67 (t2 - t1)   theta = 1.3 t1 - 0.29 t2
//
// [Estimate] runs every method independently; [Select] scores the
// candidates against the curve and keeps the one with the lowest RMSE.
package identify
