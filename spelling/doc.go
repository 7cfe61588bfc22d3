// Package spelling corrects query words against the corpus vocabulary.
//
// Each query word is checked against these rules in order, and the first
// rule that matches decides:
//
//  1. words shorter than 3 characters pass through
//  2. words in the skip set (greetings, the product name) pass through
//  3. words present in the vocabulary pass through
//  4. words that are not purely alphabetic pass through
//  5. otherwise the most frequent known word at edit distance 1, else at
//     edit distance 2, replaces it; if none is known the word is kept
//
// Candidates are generated over a-z with deletes, transposes, replaces and
// inserts, in that order; among equally frequent candidates the first one
// generated wins.
package spelling
