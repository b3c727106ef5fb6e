/*
 * doc.go, part of gosiesta.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package siestajson implements the serialization and unserialization of
// gosiesta data types. Its planned use is the communication of gosiesta
// programs with other, independent programs which can be written in other
// languages, as long as they can read and write JSON.
// siestajson also implements the transmission of options, so an external
// program can send a query to a gosiesta program and collect the results,
// for instance, via UNIX pipes.
package siestajson
