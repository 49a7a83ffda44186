// Command tonearm imports music files into a tagged, organized library.
package main
