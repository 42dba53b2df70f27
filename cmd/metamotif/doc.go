// 3 Apr 2023

/*
Metamotif finds motifs in DNA sequences, given a score for each position
from some model, for example the attributions from a neural network.

It works in two steps. First, search looks in each sequence for the
regions where the scores are unusually high. A region starts as a small
window and grows by one position on each side while its summed score is
better than nearly all sums of the same number of randomly chosen scores
from that sequence. Positions which have been used are not used again.
Second, align one-hot encodes the regions, best score first, and puts
each into the first motif which agrees with it well enough. A region
which fits nowhere starts a new motif.

Usage:
	metamotif [global flags] command [flags] args

The commands are:
	randseq out.fasta scores.{tsv,npy} nseq length
		Random sequences with a motif planted in each and scores which
		are high over the motif. For testing.
	search sequences.fasta scores.{tsv,npy}
		Write one line per region: id, k-mer, score, start, stop, length.
		Scores are a numpy array (.npy) with one row per sequence, or
		tab separated text with an optional id in the first column.
		--score-ids yes or no says whether there are ids. The default
		guesses from the first line.
	align kmers.tsv
		Group the regions and write the best supported motifs as
		motif-<i>.tsv (weights, with #support, #total and #entropy lines)
		and motif-<i>.transfac (counts).
	transfac kmers.tsv
		Count identical k-mers and write each common one as a TRANSFAC
		matrix.

The global flags are:
	-c config
		yaml, toml or json file with any of the settings below. Flags
		given on the command line win.
	-j workers
		Number of sequences searched at once. Default is the number of CPUs.
	-q
		Only warnings, no progress bars.
	-v
		Debugging output.
	--alphabet ACGT
		Symbols, in the order of the matrix columns.

A config file looks like

	search:
	  sig-p: 0.01
	  seed-size: 2
	  max-size: 20
	  extend-flanks: 0
	  n-samples: 1000
	  seed: 1637
	  order: ascending
	  score-ids: auto
	align:
	  mode: variable
	  min-agreement: 3
	  min-agreement-frac: 0.5
	  similarity: dot
	  min-support: 100
	  max-motifs: 5
	transfac:
	  min-count: 2

Run "metamotif command -h" for each command's flags.
*/
package main
