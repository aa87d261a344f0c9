/*
Package simulac is a discrete-event stochastic simulator for gene-regulatory
networks inside a growing bacterial cell.

Given a mechanistic model — DNA topology (promoters, coding segments,
terminators, antiterminators, non-coding spacers), Shea-Ackers statistical
mechanics of transcription-factor binding at each operator, mass-action
reactions, and cell-growth parameters — simulac produces a time-series
trajectory of species counts, operator configurations, and promoter
activity by repeatedly sampling the next reaction with Gillespie's direct
method.

The engine is organized the way the original Simulac C program structured
its own modules, translated into separate Go packages:

  - species      the dynamic molecule-count registry
  - cellmodel    cell volume growth, division, binomial partitioning
  - prng         seedable uniform draws and binomial deviates
  - reaction     the reaction queue and Gillespie select/execute/drain cycle
  - operator     the Shea-Ackers operator configuration sampler
  - dna          DNA topology and the RNAP polymerization engine
  - translation  ribosome queues and the translation engine
  - massaction   the mass-action reaction submitter
  - model        assembles the above into a World and drives one tick
  - mechanism    the outline/mechanism text-file grammar parser
  - trace        the tab-separated species-trace writer
  - rbsrate      Shine-Dalgarno-strength ribosome binding rate estimation
  - fingerprint  content hashing of an assembled model for run bookkeeping

Browse the subpackages for the functionality and documentation you need:
https://pkg.go.dev/github.com/catalytic/simulac#section-directories
*/
package simulac
