/*
Package strbed generates BED files of short tandem repeats (STRs) from a
repeat database.

Each repeat in the database is a multiple sequence alignment of its units.
For every repeat, strbed

  1. derives a consensus unit from the alignment (Consensus),
  2. splits the units into runs whose ungapped length equals the consensus
     length, scoring each run's purity and longest perfect stretch (Segments),
  3. keeps the runs whose size passes a per-unit-length threshold
     (Thresholds), and
  4. writes them as BED lines (Writer).

Genes are selected by chromosome (Selector).  A repeat that lies in several
overlapping genes is processed once.  BedMaker ties these steps together.
*/
package strbed
