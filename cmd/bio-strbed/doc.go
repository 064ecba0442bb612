/*
bio-strbed generates BED files of short tandem repeats from a repeat store.

A repeat store is a directory holding three tab-separated files with header
rows, each optionally gzip-compressed:

  genes.tsv         ensembl_gene chromosome strand begin end
  repeats.tsv       id chromosome source msa begin end l_effective n_effective
  gene_repeats.tsv  ensembl_gene repeat_id

The msa column is the comma-separated alignment of the repeat units, with '-'
marking gaps.

The "bed" subcommand derives a consensus unit for every repeat of the selected
genes, splits the repeat into runs of units whose length matches the
consensus, and reports the runs that pass the per-unit-length thresholds:

  chrom  start  end  unit_len  consensus  .  id:unit1,unit2,...:purity:longest_run

With -perfect, only units identical to the consensus take part in a run, and
thresholds apply to the longest perfect run.

The "regions" subcommand lists the stored repeats as plain BED intervals.

Sample usage:
bio-strbed bed \
    -db repeat-store \
    -thresholds 1:9,2:4,3:4,4:3,5:3,6:3 \
    -chromosomes chr1,chr2 \
    -out str.bed.gz
*/
package main
