/*Package interval implements interval-union operations on sets of genomic
  coordinates loaded from BED files.  Overlapping and touching intervals are
  merged, not tracked separately.  bio-strbed uses it to restrict reported
  repeat segments to target regions.
  Every position must fit in a PosType (int32).
*/
package interval
